package catalog

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeProduct_Defaults(t *testing.T) {
	p, err := DecodeProduct([]byte(`{"id":"product_1","category":"PEIXE","unit":"LB","price":"2,50","description":"Atum"}`))
	require.NoError(t, err)

	want := Product{
		ID:          "product_1",
		Category:    CategoryMercearia,
		Unit:        UnitUN,
		Price:       "2,50",
		Description: "Atum",
		Print:       true,
		LabelSize:   LabelNormal,
	}
	if diff := cmp.Diff(want, p); diff != "" {
		t.Errorf("DecodeProduct mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeProduct_KeepsExplicitValues(t *testing.T) {
	p, err := DecodeProduct([]byte(`{"id":"product_2","category":"VACA","unit":"KG","print":false,"labelSize":"Small","taxStatus":true}`))
	require.NoError(t, err)
	assert.Equal(t, CategoryVaca, p.Category)
	assert.Equal(t, UnitKG, p.Unit)
	assert.False(t, p.Print)
	assert.Equal(t, LabelSmall, p.LabelSize)
	assert.True(t, p.TaxStatus)
}

func TestDecodeProduct_InvalidJSON(t *testing.T) {
	_, err := DecodeProduct([]byte(`{`))
	assert.Error(t, err)
}

func TestDecodeQueue_OnlyMissingFieldsDefault(t *testing.T) {
	q, err := DecodeQueue([]byte(`{"id":"queue_1","name":"Talho","soundVolume":0,"hasNews":false}`))
	require.NoError(t, err)

	assert.Equal(t, 0, q.SoundVolume, "explicit zero survives")
	assert.False(t, q.HasNews)
	assert.Equal(t, DefaultQueueColor, q.BackgroundColor)
	assert.Equal(t, DefaultQueueVideoURL, q.VideoURL)
	assert.Equal(t, DefaultQueueVelocity, q.Velocity)
}

func TestQueueDocumentRoundTrip(t *testing.T) {
	in := DefaultQueueInput()
	in.Name = "Peixaria"
	in.Number = 7
	q := Queue{ID: "queue_9"}.WithInput(in)

	got := FromQueueDocument(q.Document())
	if diff := cmp.Diff(q, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestDuplicate(t *testing.T) {
	p := Product{ID: "product_1", Description: "Queijo da Serra", Price: "18,90", Print: true, Category: CategoryQueijo}
	in := Duplicate(p)
	assert.Equal(t, "Queijo da Serra (Copy)", in.Description)
	assert.False(t, in.Print)
	assert.Equal(t, CategoryQueijo, in.Category)
	assert.Equal(t, "18,90", in.Price)
}

func TestPrintable(t *testing.T) {
	products := []Product{
		{ID: "a", Print: true},
		{ID: "b"},
		{ID: "c", Print: true},
	}
	assert.Equal(t, []string{"a", "c"}, ids(Printable(products)))
	assert.Equal(t, 2, CountPrintable(products))
	assert.Empty(t, Printable(nil))
}

func TestColorHex(t *testing.T) {
	assert.Equal(t, "#ff5252ff", ColorHex(DefaultQueueColor))
	assert.Equal(t, "#00000000", ColorHex(0))
	assert.Equal(t, "#11223380", ColorHex(0x80112233))
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"", DefaultQueueColor, true},
		{"#00ff00", 0xFF00FF00, true},
		{"#80ff0000", 0x80FF0000, true},
		{"4294922834", 4294922834, true},
		{"#fff", 0, false},
		{"red", 0, false},
	}
	for _, tt := range tests {
		got, err := ParseColor(tt.in)
		if !tt.ok {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestCategoryImageName(t *testing.T) {
	assert.Equal(t, "charcutaria.png", CategoryCharcutaria.ImageName())
	assert.Equal(t, "kg", UnitKG.Suffix())
	assert.Equal(t, "un", UnitUN.Suffix())
}
