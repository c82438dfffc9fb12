package money

import "testing"

func TestToMinor(t *testing.T) {
	cases := []struct {
		name   string
		amount float64
		want   int64
	}{
		{"whole", 30.00, 3000},
		{"cents", 15.75, 1575},
		{"rounds_half_up", 0.005, 1},
		{"float_noise", 10.10, 1010},
		{"zero", 0, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ToMinor(tc.amount); got != tc.want {
				t.Errorf("ToMinor(%v) = %d, want %d", tc.amount, got, tc.want)
			}
		})
	}
}

func TestSplitEven(t *testing.T) {
	t.Run("residual_cent_to_first", func(t *testing.T) {
		shares := SplitEven(1000, 3)
		want := []int64{334, 333, 333}
		for i := range want {
			if shares[i] != want[i] {
				t.Fatalf("SplitEven(1000, 3) = %v, want %v", shares, want)
			}
		}
	})

	t.Run("sum_is_exact", func(t *testing.T) {
		for _, n := range []int{1, 2, 3, 7, 11} {
			shares := SplitEven(9999, n)
			if Sum(shares) != 9999 {
				t.Errorf("SplitEven(9999, %d) sums to %d", n, Sum(shares))
			}
		}
	})

	t.Run("even_division_no_residual", func(t *testing.T) {
		shares := SplitEven(3000, 2)
		if shares[0] != 1500 || shares[1] != 1500 {
			t.Errorf("SplitEven(3000, 2) = %v, want [1500 1500]", shares)
		}
	})

	t.Run("zero_participants", func(t *testing.T) {
		if shares := SplitEven(1000, 0); shares != nil {
			t.Errorf("SplitEven(1000, 0) = %v, want nil", shares)
		}
	})
}

func TestReallocate(t *testing.T) {
	t.Run("keeps_proportions", func(t *testing.T) {
		shares := Reallocate(3000, []int64{2000, 1000})
		if shares[0] != 2000 || shares[1] != 1000 {
			t.Errorf("Reallocate(3000, [2000 1000]) = %v", shares)
		}
	})

	t.Run("residual_to_first", func(t *testing.T) {
		shares := Reallocate(1000, []int64{1, 1, 1})
		if Sum(shares) != 1000 {
			t.Fatalf("shares sum to %d, want 1000", Sum(shares))
		}
		if shares[0] != 334 {
			t.Errorf("first share = %d, want 334", shares[0])
		}
	})

	t.Run("zero_weights_fall_back_to_even", func(t *testing.T) {
		shares := Reallocate(1000, []int64{0, 0})
		if shares[0] != 500 || shares[1] != 500 {
			t.Errorf("Reallocate(1000, [0 0]) = %v, want [500 500]", shares)
		}
	})
}
