package pulse

import "testing"

func TestMedianFilterWindow(t *testing.T) {
	cases := []struct {
		name   string
		window int
		input  []int
		want   []int
	}{
		{
			name:   "window of 3 zero padded",
			window: 3,
			input:  []int{5, 1, 9, 2},
			want:   []int{0, 1, 5, 2},
		},
		{
			name:   "even window coerced to odd",
			window: 4,
			input:  []int{10, 20, 30},
			want:   []int{0, 0, 10},
		},
		{
			name:   "constant input",
			window: 5,
			input:  []int{7, 7, 7, 7, 7, 7},
			want:   []int{0, 0, 7, 7, 7, 7},
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			m := NewMedianFilter(c.window)
			for i, x := range c.input {
				got := m.Process(x)
				if got != c.want[i] {
					t.Fatalf("step %d: got %d, want %d", i, got, c.want[i])
				}
			}
		})
	}
}

func TestMedianFilterReset(t *testing.T) {
	m := NewMedianFilter(3)
	m.Process(100)
	m.Process(200)
	m.Reset()
	got := m.Process(9)
	if got != 0 {
		t.Fatalf("after reset, got %d, want 0", got)
	}
}
