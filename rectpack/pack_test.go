package rectpack

import (
	"errors"
	"math/rand"
	"testing"
)

// checkLayout 验证打包结果：所有矩形都在边界内、互不重叠，且总面积不超过边界面积
func checkLayout(t *testing.T, rects []Rect, size Size) {
	t.Helper()
	bounds := NewRect(0, 0, size.Width, size.Height)
	area := 0
	for i := range rects {
		area += rects[i].Area()
		if !bounds.ContainsRect(rects[i]) {
			t.Errorf("%s is outside of %s", rects[i].String(), bounds.String())
		}
	}
	if size.Area() < area {
		t.Errorf("packed size %s smaller than total area %d", size.String(), area)
	}
	for i := 0; i < len(rects)-1; i++ {
		for j := i + 1; j < len(rects); j++ {
			if rects[i].Intersects(rects[j]) {
				t.Errorf("%s and %s intersect", rects[i].String(), rects[j].String())
			}
		}
	}
}

func rectsOf(sizes ...[2]int) []Rect {
	rects := make([]Rect, len(sizes))
	for i, s := range sizes {
		rects[i].Size = NewSizeID(i, s[0], s[1])
	}
	return rects
}

func TestPackEmpty(t *testing.T) {
	t.Parallel()

	size, err := Pack(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if size != (Size{}) {
		t.Fatalf("expected zero size, got %s", size.String())
	}
}

func TestPackScenarios(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  [][2]int
		want   Size
		points []Point // 按排序后的顺序
		spaces []space
	}{
		{
			name:   "SingleRectMatchesWidth",
			input:  [][2]int{{7, 3}},
			want:   NewSize(7, 3),
			points: []Point{{0, 0}},
			spaces: []space{{x: 0, y: 3, width: 7, height: unbounded - 3}},
		},
		{
			name:   "TwoSquaresStack",
			input:  [][2]int{{1000, 1000}, {1000, 1000}},
			want:   NewSize(1000, 2000),
			points: []Point{{0, 0}, {0, 1000}},
			spaces: []space{
				{x: 0, y: 2000, width: 1451, height: unbounded - 2000},
				{x: 1000, y: 0, width: 451, height: 1000},
				{x: 1000, y: 1000, width: 451, height: 1000},
			},
		},
		{
			name:   "SplitThenHeightMatch",
			input:  [][2]int{{2, 4}, {2, 2}, {2, 2}},
			want:   NewSize(4, 4),
			points: []Point{{0, 0}, {2, 0}, {2, 2}},
			spaces: []space{
				{x: 0, y: 4, width: 5, height: unbounded - 4},
				{x: 4, y: 2, width: 1, height: 2},
				{x: 4, y: 0, width: 1, height: 2},
			},
		},
		{
			name:   "ExactFitSwapsLastSpace",
			input:  [][2]int{{3, 4}, {1, 2}, {2, 2}},
			want:   NewSize(5, 4),
			points: []Point{{0, 0}, {3, 0}, {3, 2}},
			spaces: []space{
				{x: 0, y: 4, width: 5, height: unbounded - 4},
				{x: 4, y: 0, width: 1, height: 2},
			},
		},
		{
			name:   "ExactFitLastSpace",
			input:  [][2]int{{2, 2}, {1, 2}},
			want:   NewSize(3, 2),
			points: []Point{{0, 0}, {2, 0}},
			spaces: []space{
				{x: 0, y: 2, width: 3, height: unbounded - 2},
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rects := rectsOf(tt.input...)
			size, spaces, err := pack(rects)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if size != tt.want {
				t.Fatalf("expected size %s, got %s", tt.want.String(), size.String())
			}
			for i, want := range tt.points {
				if rects[i].Point != want {
					t.Errorf("rect %d: expected %s, got %s", i, want.String(), rects[i].Point.String())
				}
			}
			if len(spaces) != len(tt.spaces) {
				t.Fatalf("expected %d spaces, got %d: %+v", len(tt.spaces), len(spaces), spaces)
			}
			for i, want := range tt.spaces {
				if spaces[i] != want {
					t.Errorf("space %d: expected %+v, got %+v", i, want, spaces[i])
				}
			}
			checkLayout(t, rects, size)
		})
	}
}

func TestPackSortsByHeightStable(t *testing.T) {
	t.Parallel()

	rects := rectsOf([2]int{5, 1}, [2]int{2, 3}, [2]int{4, 3}, [2]int{1, 8})
	if _, err := Pack(rects); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wantIDs := []int{3, 1, 2, 0}
	for i, id := range wantIDs {
		if rects[i].ID != id {
			t.Fatalf("position %d: expected id %d, got %d", i, id, rects[i].ID)
		}
	}
}

func TestPackInvalidSize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input [][2]int
	}{
		{name: "ZeroWidth", input: [][2]int{{3, 3}, {0, 5}}},
		{name: "ZeroHeight", input: [][2]int{{3, 0}}},
		{name: "Negative", input: [][2]int{{1, 1}, {2, 2}, {-4, 2}}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rects := rectsOf(tt.input...)
			_, err := Pack(rects)
			if !errors.Is(err, ErrInvalidSize) {
				t.Fatalf("expected ErrInvalidSize, got %v", err)
			}
			for i := range rects {
				if rects[i].ID != i || rects[i].X != 0 || rects[i].Y != 0 {
					t.Fatalf("rects modified on error: %v", rects)
				}
			}
		})
	}
}

func TestPackRandom(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(7))
	for round := 0; round < 50; round++ {
		count := rng.Intn(200) + 1
		rects := make([]Rect, count)
		for i := range rects {
			rects[i].Size = NewSizeID(i, rng.Intn(120)+1, rng.Intn(120)+1)
		}
		size, err := Pack(rects)
		if err != nil {
			t.Fatalf("round %d: unexpected error: %v", round, err)
		}
		checkLayout(t, rects, size)
	}
}

func TestPackOrderIndependent(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(42))
	// 高度互不相同时，输入顺序不影响结果
	base := make([]Rect, 64)
	for i := range base {
		base[i].Size = NewSizeID(i, rng.Intn(64)+1, i+1)
	}
	first := append([]Rect(nil), base...)
	want, err := Pack(first)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for round := 0; round < 10; round++ {
		shuffled := append([]Rect(nil), base...)
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		got, err := Pack(shuffled)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != want {
			t.Fatalf("round %d: expected %s, got %s", round, want.String(), got.String())
		}
	}
}

func BenchmarkPack(b *testing.B) {
	rng := rand.New(rand.NewSource(1))
	sizes := make([]Size, 1024)
	for i := range sizes {
		sizes[i] = NewSizeID(i, rng.Intn(96)+32, rng.Intn(96)+32)
	}
	rects := make([]Rect, len(sizes))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for j, size := range sizes {
			rects[j] = Rect{Size: size}
		}
		if _, err := Pack(rects); err != nil {
			b.Fatal(err)
		}
	}
}
