package bitset

import "testing"

func TestSetTestCount(t *testing.T) {
	tests := []struct {
		name      string
		n         int
		set       []int
		wantCount int
		wantAny   bool
	}{
		{name: "Empty", n: 5, wantCount: 0, wantAny: false},
		{name: "Single", n: 5, set: []int{2}, wantCount: 1, wantAny: true},
		{name: "CrossesWordBoundary", n: 130, set: []int{0, 63, 64, 129}, wantCount: 4, wantAny: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := Of(tt.n, tt.set...)
			if got := b.Count(); got != tt.wantCount {
				t.Errorf("Count() = %d, want %d", got, tt.wantCount)
			}
			if got := b.Any(); got != tt.wantAny {
				t.Errorf("Any() = %v, want %v", got, tt.wantAny)
			}
			for _, i := range tt.set {
				if !b.Test(i) {
					t.Errorf("Test(%d) = false, want true", i)
				}
			}
		})
	}
}

func TestSingletonIndex(t *testing.T) {
	tests := []struct {
		name   string
		b      Bitset
		want   int
		wantOK bool
	}{
		{name: "Empty", b: New(4), wantOK: false},
		{name: "Singleton", b: Of(4, 3), want: 3, wantOK: true},
		{name: "SingletonHighWord", b: Of(100, 70), want: 70, wantOK: true},
		{name: "TwoBits", b: Of(4, 1, 2), wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.b.SingletonIndex()
			if ok != tt.wantOK {
				t.Fatalf("SingletonIndex() ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("SingletonIndex() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestNot(t *testing.T) {
	b := Of(5, 0, 2)
	got := b.Not()
	want := Of(5, 1, 3, 4)
	if !got.Equal(want) {
		t.Errorf("Not() = %s, want %s", got, want)
	}
	// Complementing twice must restore the original, including tail bits.
	if !got.Not().Equal(b) {
		t.Errorf("Not(Not()) = %s, want %s", got.Not(), b)
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		name string
		a, b Bitset
		want int
	}{
		{name: "Equal", a: Of(4, 1), b: Of(4, 1), want: 0},
		{name: "SetBeatsClear", a: Of(4, 0), b: Of(4, 1), want: 1},
		{name: "EarlierBitWins", a: Of(4, 1, 3), b: Of(4, 2, 3), want: 1},
		{name: "EmptyIsSmallest", a: New(4), b: Of(4, 3), want: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Compare(tt.b); got != tt.want {
				t.Errorf("Compare(%s, %s) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestConcatSlice(t *testing.T) {
	a := Of(3, 0)
	b := Of(3, 2)
	cat := Concat(a, b)
	if cat.Size() != 6 {
		t.Fatalf("Concat size = %d, want 6", cat.Size())
	}
	if got := cat.String(); got != "100001" {
		t.Errorf("Concat = %s, want 100001", got)
	}
	if !Chunk(cat, 0).Equal(a) || !Chunk(cat, 1).Equal(b) {
		t.Errorf("Chunk round-trip failed: %s / %s", Chunk(cat, 0), Chunk(cat, 1))
	}
}

func TestKeyDistinguishesLengths(t *testing.T) {
	// A 3-bit empty clade and a 6-bit empty subsplit share storage bytes but
	// must not collide as map keys.
	if New(3).Key() == New(6).Key() {
		t.Error("Key() collision between bitsets of different lengths")
	}
	if Of(4, 1).Key() != Of(4, 1).Key() {
		t.Error("Key() not stable for equal bitsets")
	}
}
