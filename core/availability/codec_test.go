package availability

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/kilianp07/shiftboard/core/model"
)

const halfHour = 30 * time.Minute

func newGrid(t *testing.T) *Grid {
	t.Helper()
	g, err := NewGrid(halfHour)
	if err != nil {
		t.Fatalf("grid: %v", err)
	}
	return g
}

func rangeStrings(rs []model.Range) []string {
	out := make([]string, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.String())
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestEncodeSingleRun(t *testing.T) {
	g := newGrid(t)
	for _, at := range []model.ClockTime{model.At(8, 0), model.At(8, 30), model.At(9, 0)} {
		if err := g.Set(model.Monday, at, model.Unavailable); err != nil {
			t.Fatalf("set: %v", err)
		}
	}
	got := rangeStrings(Encode(g, model.Monday, model.Unavailable))
	if !equalStrings(got, []string{"08:00-09:30"}) {
		t.Fatalf("unexpected ranges %v", got)
	}
	if rs := Encode(g, model.Monday, model.Preferred); len(rs) != 0 {
		t.Fatalf("preferred should be empty: %v", rs)
	}
	if rs := Encode(g, model.Monday, model.Available); rs != nil {
		t.Fatalf("baseline must never be encoded: %v", rs)
	}
}

func TestEncodeRunsSplitByOtherStatus(t *testing.T) {
	g := newGrid(t)
	_ = g.Paint(model.Tuesday, model.At(8, 0), model.At(10, 0), model.Unavailable)
	_ = g.Set(model.Tuesday, model.At(9, 0), model.Preferred)
	_ = g.Paint(model.Tuesday, model.At(11, 0), model.At(12, 0), model.Unavailable)
	// run open at the last slot of the day
	_ = g.Set(model.Tuesday, model.At(23, 30), model.Unavailable)

	got := rangeStrings(Encode(g, model.Tuesday, model.Unavailable))
	want := []string{"08:00-09:00", "09:30-10:00", "11:00-12:00", "23:30-24:00"}
	if !equalStrings(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
	if p := rangeStrings(Encode(g, model.Tuesday, model.Preferred)); !equalStrings(p, []string{"09:00-09:30"}) {
		t.Fatalf("preferred %v", p)
	}
}

func TestDecodeScenario(t *testing.T) {
	doc := Document{"Monday": {
		model.Unavailable: {"08:00-09:30"},
		model.Preferred:   {"14:00-15:00"},
	}}
	g, err := DecodeDocument(doc, halfHour)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := map[model.ClockTime]model.Category{
		model.At(8, 0):   model.Unavailable,
		model.At(8, 30):  model.Unavailable,
		model.At(9, 0):   model.Unavailable,
		model.At(14, 0):  model.Preferred,
		model.At(14, 30): model.Preferred,
	}
	for at := model.ClockTime(0); at < model.EndOfDay; at += 30 {
		exp, ok := want[at]
		if !ok {
			exp = model.Available
		}
		if got := g.Get(model.Monday, at); got != exp {
			t.Fatalf("Monday-%s: got %s want %s", at, got, exp)
		}
	}
	if g.Len() != len(want) {
		t.Fatalf("baseline materialized: %d cells", g.Len())
	}
}

func TestDecodeMisalignedRange(t *testing.T) {
	r, _ := model.ParseRange(model.Monday, model.Unavailable, "08:15-09:15")
	g, err := Decode([]model.Range{r}, halfHour)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	slots := g.Slots(model.Monday)
	if len(slots) != 2 || slots[0] != model.At(8, 30) || slots[1] != model.At(9, 0) {
		t.Fatalf("unexpected slots %v", slots)
	}
}

func TestDecodeCrossCategoryCollision(t *testing.T) {
	doc := Document{
		"Monday": {
			model.Unavailable: {"08:00-10:00"},
			model.Preferred:   {"09:30-11:00"},
		},
		"Tuesday": {model.Preferred: {"10:00-11:00"}},
	}
	g, err := DecodeDocument(doc, halfHour)
	if !errors.Is(err, ErrOverlappingRange) {
		t.Fatalf("expected overlap error, got %v", err)
	}
	var oe *OverlapError
	if !errors.As(err, &oe) || oe.Slot != model.At(9, 30) {
		t.Fatalf("expected contested slot 09:30, got %#v", oe)
	}
	if len(g.Slots(model.Monday)) != 0 {
		t.Fatalf("rejected day partially applied")
	}
	if len(g.Slots(model.Tuesday)) != 2 {
		t.Fatalf("other days must still decode")
	}
}

func TestDecodeSameCategoryOverlap(t *testing.T) {
	a, _ := model.ParseRange(model.Wednesday, model.Unavailable, "08:00-10:00")
	b, _ := model.ParseRange(model.Wednesday, model.Unavailable, "09:00-11:00")
	c, _ := model.ParseRange(model.Wednesday, model.Unavailable, "11:00-12:00")
	if _, err := Decode([]model.Range{a, b}, halfHour); !errors.Is(err, ErrOverlappingRange) {
		t.Fatalf("expected overlap, got %v", err)
	}
	// touching ranges are adjacent, not overlapping
	g, err := Decode([]model.Range{a, c}, halfHour)
	if err != nil {
		t.Fatalf("adjacent ranges rejected: %v", err)
	}
	if got := rangeStrings(Encode(g, model.Wednesday, model.Unavailable)); !equalStrings(got, []string{"08:00-10:00", "11:00-12:00"}) {
		t.Fatalf("got %v", got)
	}
}

func TestDecodeInvalidRangeRejectsDay(t *testing.T) {
	doc := Document{
		"Monday":   {model.Unavailable: {"08:00-09:00", "10:00-09:00"}},
		"Thursday": {model.Unavailable: {"08:00-09:00"}},
		"Funday":   {model.Unavailable: {"08:00-09:00"}},
	}
	g, err := DecodeDocument(doc, halfHour)
	if !errors.Is(err, model.ErrInvalidRange) || !errors.Is(err, model.ErrUnknownDay) {
		t.Fatalf("expected invalid range and unknown day, got %v", err)
	}
	var de *DocumentError
	if !errors.As(err, &de) || len(de.Days) != 2 {
		t.Fatalf("expected two rejected keys, got %v", err)
	}
	if len(g.Slots(model.Monday)) != 0 {
		t.Fatalf("Monday must not be partially applied")
	}
	if len(g.Slots(model.Thursday)) != 2 {
		t.Fatalf("Thursday should decode")
	}
}

func TestDecodeDuplicateDaySpellings(t *testing.T) {
	doc := Document{
		"Mon":    {model.Unavailable: {"bad"}},
		"Monday": {model.Preferred: {"08:00-09:00"}},
	}
	g, err := DecodeDocument(doc, halfHour)
	if err == nil {
		t.Fatalf("expected error")
	}
	if len(g.Slots(model.Monday)) != 0 {
		t.Fatalf("Monday must be rejected as a whole")
	}
}

func TestUnknownCategoryPassesThrough(t *testing.T) {
	training := model.Category("training")
	doc := Document{"Friday": {training: {"13:00-14:00"}}}
	g, err := DecodeDocument(doc, halfHour)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if g.Get(model.Friday, model.At(13, 30)) != training {
		t.Fatalf("category lost")
	}
	out := EncodeDocument(g, model.DefaultCategories)
	if got := out["Friday"][training]; !equalStrings(got, []string{"13:00-14:00"}) {
		t.Fatalf("category not re-encoded: %v", out)
	}
	if got, ok := out["Friday"][model.Unavailable]; !ok || len(got) != 0 {
		t.Fatalf("declared categories should be listed empty: %v", out)
	}
}

func TestEmptyInputs(t *testing.T) {
	g, err := DecodeDocument(Document{}, halfHour)
	if err != nil || g.Len() != 0 {
		t.Fatalf("empty document: %v %d", err, g.Len())
	}
	if len(EncodeDocument(g, model.DefaultCategories)) != 0 {
		t.Fatalf("empty grid should encode to empty document")
	}
	g, err = Decode(nil, halfHour)
	if err != nil || g.Len() != 0 {
		t.Fatalf("nil ranges: %v", err)
	}
}

func TestNormalizeMergesAdjacent(t *testing.T) {
	doc := Document{"tue": {
		model.Unavailable: {"08:00-09:00", "09:00-10:00"},
		model.Available:   {"12:00-13:00"},
	}}
	out, err := Normalize(doc, halfHour, model.DefaultCategories)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if got := out["Tuesday"][model.Unavailable]; !equalStrings(got, []string{"08:00-10:00"}) {
		t.Fatalf("got %v", out)
	}
	if _, ok := out["Tuesday"][model.Available]; ok {
		t.Fatalf("baseline must not be stored")
	}
}

func randomGrid(t *testing.T, rng *rand.Rand, slot time.Duration) *Grid {
	t.Helper()
	g, err := NewGrid(slot)
	if err != nil {
		t.Fatalf("grid: %v", err)
	}
	cats := []model.Category{model.Available, model.Unavailable, model.Preferred}
	step := model.ClockTime(slot / time.Minute)
	for _, day := range model.Week {
		for at := model.ClockTime(0); at < model.EndOfDay; at += step {
			if err := g.Set(day, at, cats[rng.Intn(len(cats))]); err != nil {
				t.Fatalf("set: %v", err)
			}
		}
	}
	return g
}

func encodeAll(g *Grid) []model.Range {
	var out []model.Range
	for _, day := range model.Week {
		for _, c := range model.DefaultCategories {
			out = append(out, Encode(g, day, c)...)
		}
	}
	return out
}

func TestRoundTripAndIdempotence(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for _, slot := range []time.Duration{15 * time.Minute, halfHour, time.Hour} {
		for i := 0; i < 20; i++ {
			g := randomGrid(t, rng, slot)
			encoded := encodeAll(g)
			back, err := Decode(encoded, slot)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if !back.Equal(g) {
				t.Fatalf("round trip mismatch at slot %s iteration %d", slot, i)
			}
			again := encodeAll(back)
			if !equalStrings(rangeStrings(again), rangeStrings(encoded)) {
				t.Fatalf("encode not idempotent")
			}
			doc := EncodeDocument(g, model.DefaultCategories)
			fromDoc, err := DecodeDocument(doc, slot)
			if err != nil || !fromDoc.Equal(g) {
				t.Fatalf("document round trip failed: %v", err)
			}
		}
	}
}

func TestEncodedRangesAreMaximal(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	g := randomGrid(t, rng, halfHour)
	for _, day := range model.Week {
		for _, c := range model.DefaultCategories {
			rs := Encode(g, day, c)
			for i := 1; i < len(rs); i++ {
				if rs[i-1].End() >= rs[i].Start() {
					t.Fatalf("%s %s: ranges %s and %s are mergeable or overlapping", day, c, rs[i-1], rs[i])
				}
			}
		}
	}
}
