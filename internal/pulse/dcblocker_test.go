package pulse

import "testing"

func TestDCBlockerConvergesOnConstantInput(t *testing.T) {
	d := NewDCBlocker(8)
	const level = 500
	var last int
	for i := 0; i < 32; i++ {
		last = d.Filter(level)
	}
	if last != 0 {
		t.Fatalf("converged output = %d, want 0", last)
	}
}

func TestDCBlockerTracksRunningSum(t *testing.T) {
	d := NewDCBlocker(4)
	inputs := []int{10, 20, 30, 40, 50}
	for _, x := range inputs {
		d.Filter(x)
	}
	want := 20 + 30 + 40 + 50
	if d.sum != want {
		t.Fatalf("running sum = %d, want %d", d.sum, want)
	}
}

func TestDCBlockerReset(t *testing.T) {
	d := NewDCBlocker(4)
	for i := 0; i < 10; i++ {
		d.Filter(1000)
	}
	d.Reset()
	if d.sum != 0 {
		t.Fatalf("sum after reset = %d, want 0", d.sum)
	}
	got := d.Filter(40)
	if got != 30 {
		t.Fatalf("first sample after reset = %d, want 30", got)
	}
}

func TestRoundDivTiesAwayFromZero(t *testing.T) {
	cases := []struct{ n, d, want int }{
		{7, 2, 4},
		{-7, 2, -4},
		{5, 2, 3},
		{-5, 2, -3},
		{0, 4, 0},
	}
	for _, c := range cases {
		if got := roundDiv(c.n, c.d); got != c.want {
			t.Fatalf("roundDiv(%d,%d) = %d, want %d", c.n, c.d, got, c.want)
		}
	}
}
