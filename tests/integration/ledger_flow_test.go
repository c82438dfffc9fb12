package integration

import (
	"fmt"
	"net/http"
	"testing"
)

// Two members, one 30.00 expense paid by A and split evenly, then B pays
// A back 15.00: balances go +15/-15 and back to zero, and the suggestion
// list empties out.
func TestLedgerFlow_ExpenseThenSettlement(t *testing.T) {
	app := setupApp(t)
	tokenA, idA := app.registerUser(t, "alice")
	_, idB := app.registerUser(t, "bob")

	groupID := app.createGroup(t, tokenA, "Apartment")
	app.addMember(t, tokenA, groupID, idB)

	rec := app.request("POST", "/api/v1/expenses", fmt.Sprintf(`{
		"group_id": %.0f, "payer_id": %.0f, "description": "Utilities",
		"amount": 30.00, "category": "Rent",
		"splits": [
			{"user_id": %.0f, "amount_owed": 15.00},
			{"user_id": %.0f, "amount_owed": 15.00}
		]
	}`, groupID, idA, idA, idB), tokenA)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create expense failed: %d %s", rec.Code, rec.Body.String())
	}

	balances, suggested := app.groupBalances(t, tokenA, groupID)
	if balances[idA] != 15.0 {
		t.Errorf("expected alice at +15.00, got %v", balances[idA])
	}
	if balances[idB] != -15.0 {
		t.Errorf("expected bob at -15.00, got %v", balances[idB])
	}
	if len(suggested) != 1 {
		t.Fatalf("expected 1 suggested transaction, got %d", len(suggested))
	}
	tr := suggested[0].(map[string]interface{})
	if tr["from_id"].(float64) != idB || tr["to_id"].(float64) != idA || tr["amount"].(float64) != 15.0 {
		t.Errorf("unexpected suggestion: %v", tr)
	}

	rec = app.request("POST", "/api/v1/settlements", fmt.Sprintf(
		`{"group_id": %.0f, "payer_id": %.0f, "payee_id": %.0f, "amount": 15.00}`,
		groupID, idB, idA), tokenA)
	if rec.Code != http.StatusCreated {
		t.Fatalf("record settlement failed: %d %s", rec.Code, rec.Body.String())
	}

	balances, suggested = app.groupBalances(t, tokenA, groupID)
	if balances[idA] != 0 || balances[idB] != 0 {
		t.Errorf("expected settled group, got %v", balances)
	}
	if len(suggested) != 0 {
		t.Errorf("expected no suggestions after settlement, got %v", suggested)
	}
}

// 10.00 split three ways lands as 3.34/3.33/3.33 with nothing lost.
func TestLedgerFlow_UnevenThreeWaySplit(t *testing.T) {
	app := setupApp(t)
	tokenA, idA := app.registerUser(t, "dana")
	_, idB := app.registerUser(t, "erin")
	_, idC := app.registerUser(t, "femi")

	groupID := app.createGroup(t, tokenA, "Lunch")
	app.addMember(t, tokenA, groupID, idB)
	app.addMember(t, tokenA, groupID, idC)

	rec := app.request("POST", "/api/v1/expenses", fmt.Sprintf(`{
		"group_id": %.0f, "payer_id": %.0f, "description": "Pizza",
		"amount": 10.00, "category": "Food",
		"splits": [
			{"user_id": %.0f, "amount_owed": 3.34},
			{"user_id": %.0f, "amount_owed": 3.33},
			{"user_id": %.0f, "amount_owed": 3.33}
		]
	}`, groupID, idA, idA, idB, idC), tokenA)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create expense failed: %d %s", rec.Code, rec.Body.String())
	}

	balances, _ := app.groupBalances(t, tokenA, groupID)
	var total float64
	for _, b := range balances {
		total += b
	}
	if total != 0 {
		t.Errorf("expected conserved balances, total %v", total)
	}
	if balances[idA] != 6.66 {
		t.Errorf("expected payer at +6.66, got %v", balances[idA])
	}
}

// A split that does not sum to the amount is rejected end to end.
func TestLedgerFlow_SplitMismatchRejected(t *testing.T) {
	app := setupApp(t)
	tokenA, idA := app.registerUser(t, "gus")
	_, idB := app.registerUser(t, "hana")

	groupID := app.createGroup(t, tokenA, "Trip")
	app.addMember(t, tokenA, groupID, idB)

	rec := app.request("POST", "/api/v1/expenses", fmt.Sprintf(`{
		"group_id": %.0f, "payer_id": %.0f, "description": "Hotel",
		"amount": 100.00,
		"splits": [
			{"user_id": %.0f, "amount_owed": 50.00},
			{"user_id": %.0f, "amount_owed": 49.99}
		]
	}`, groupID, idA, idA, idB), tokenA)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
	errObj := parseJSON(t, rec)["error"].(map[string]interface{})
	if errObj["code"] != "SPLIT_SUM_MISMATCH" {
		t.Errorf("expected SPLIT_SUM_MISMATCH, got %v", errObj["code"])
	}
}

// A member with a non-zero balance cannot be removed until they settle up.
func TestLedgerFlow_RemoveMemberRequiresZeroBalance(t *testing.T) {
	app := setupApp(t)
	tokenA, idA := app.registerUser(t, "iris")
	_, idB := app.registerUser(t, "jack")

	groupID := app.createGroup(t, tokenA, "Flat")
	app.addMember(t, tokenA, groupID, idB)

	rec := app.request("POST", "/api/v1/expenses", fmt.Sprintf(`{
		"group_id": %.0f, "payer_id": %.0f, "description": "Internet",
		"amount": 40.00,
		"splits": [
			{"user_id": %.0f, "amount_owed": 20.00},
			{"user_id": %.0f, "amount_owed": 20.00}
		]
	}`, groupID, idA, idA, idB), tokenA)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create expense failed: %d %s", rec.Code, rec.Body.String())
	}

	rec = app.request("DELETE", fmt.Sprintf("/api/v1/groups/%.0f/members/%.0f", groupID, idB), "", tokenA)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body.String())
	}
	errObj := parseJSON(t, rec)["error"].(map[string]interface{})
	if errObj["code"] != "MEMBER_HAS_OUTSTANDING_BALANCE" {
		t.Errorf("expected MEMBER_HAS_OUTSTANDING_BALANCE, got %v", errObj["code"])
	}

	// Settle up, then removal succeeds.
	rec = app.request("POST", "/api/v1/settlements", fmt.Sprintf(
		`{"group_id": %.0f, "payer_id": %.0f, "payee_id": %.0f, "amount": 20.00}`,
		groupID, idB, idA), tokenA)
	if rec.Code != http.StatusCreated {
		t.Fatalf("record settlement failed: %d %s", rec.Code, rec.Body.String())
	}

	rec = app.request("DELETE", fmt.Sprintf("/api/v1/groups/%.0f/members/%.0f", groupID, idB), "", tokenA)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", rec.Code, rec.Body.String())
	}
}

// The summary endpoint aggregates across groups.
func TestLedgerFlow_UserSummary(t *testing.T) {
	app := setupApp(t)
	tokenA, idA := app.registerUser(t, "kira")
	_, idB := app.registerUser(t, "liam")

	groupID := app.createGroup(t, tokenA, "Ski house")
	app.addMember(t, tokenA, groupID, idB)

	rec := app.request("POST", "/api/v1/expenses", fmt.Sprintf(`{
		"group_id": %.0f, "payer_id": %.0f, "description": "Lift passes",
		"amount": 80.00,
		"splits": [
			{"user_id": %.0f, "amount_owed": 40.00},
			{"user_id": %.0f, "amount_owed": 40.00}
		]
	}`, groupID, idA, idA, idB), tokenA)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create expense failed: %d %s", rec.Code, rec.Body.String())
	}

	rec = app.request("GET", "/api/v1/groups/summary", "", tokenA)
	if rec.Code != http.StatusOK {
		t.Fatalf("summary failed: %d %s", rec.Code, rec.Body.String())
	}
	body := parseJSON(t, rec)
	if body["total_owed"].(float64) != 40.0 {
		t.Errorf("expected total_owed 40.00, got %v", body["total_owed"])
	}
	if body["total_owe"].(float64) != 0.0 {
		t.Errorf("expected total_owe 0, got %v", body["total_owe"])
	}
	if body["net_balance"].(float64) != 40.0 {
		t.Errorf("expected net_balance 40.00, got %v", body["net_balance"])
	}
}
