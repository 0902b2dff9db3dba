package csvio_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/stock-ledger/csvio"
	"github.com/warp/stock-ledger/inventory"
	"github.com/warp/stock-ledger/inventory/store"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestImporter(t *testing.T, products ...inventory.Product) (*csvio.Importer, *inventory.Ledger) {
	t.Helper()
	ledger := inventory.NewLedger(store.NewTxMemory())
	require.NoError(t, ledger.Load(context.Background(), inventory.Snapshot{Products: products}))
	return csvio.NewImporter(ledger), ledger
}

func catalog() []inventory.Product {
	return []inventory.Product{
		{ID: 1, Code: "P-001", Name: "무선 마우스", Category: "전자제품", Stock: 45, SafetyStock: 10},
		{ID: 2, Code: "P-002", Name: "기계식 키보드", Category: "전자제품", Stock: 8, SafetyStock: 15},
		{ID: 5, Code: "P-005", Name: `27인치 "QHD" 모니터`, Category: "전자제품", Stock: 3, SafetyStock: 5},
	}
}

// =============================================================================
// TOKENIZER
// =============================================================================

func TestSplitLine(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []string
	}{
		{"plain", "a,b,c", []string{"a", "b", "c"}},
		{"trims fields", " a , b ,c ", []string{"a", "b", "c"}},
		{"quoted comma", `a,"b, c",d`, []string{"a", "b, c", "d"}},
		{"doubled quote", `"say ""hi""",x`, []string{`say "hi"`, "x"}},
		{"empty quoted", `"",x`, []string{"", "x"}},
		{"quote mid field toggles", `ab"c,d"e`, []string{"abc,de"}},
		{"trailing comma", "a,", []string{"a", ""}},
		{"empty line", "", []string{""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, csvio.SplitLine(tt.line))
		})
	}
}

func TestParseInt(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"42", 42, true},
		{"  7", 7, true},
		{"-3", -3, true},
		{"+5", 5, true},
		{"12abc", 12, true},
		{"7.9", 7, true},
		{"", 0, false},
		{"abc", 0, false},
		{"-", 0, false},
		{"99999999999999999999999", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := csvio.ParseInt(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

// =============================================================================
// PARSE
// =============================================================================

func TestParse_RowValidation(t *testing.T) {
	// GIVEN: A payload with a BOM, a header, a blank line and a mix of
	// good and bad rows
	raw := "\uFEFFcategory,code,name,stock,safetyStock,status\n" +
		"전자제품,P-001,마우스,45,10,정상\n" +
		"\n" +
		"전자제품,P-002,키보드\n" + // too few columns
		"전자제품,,이름없음,1,1\n" + // empty code
		"전자제품,P-003,,1,1\n" + // empty name
		"전자제품,P-004,허브,many,1\n" + // bad stock
		"사무용품,P-005,\"펜, 검정\",12abc,x\n" // tolerant numbers

	// WHEN: Parsing
	batch, err := csvio.Parse(raw)
	require.NoError(t, err)

	// THEN: Two rows accepted, four rejected, blank line ignored
	require.Len(t, batch.Rows, 2)
	assert.Equal(t, 4, batch.Failed)
	require.Len(t, batch.Rejections, 4)
	assert.Equal(t, 4, batch.Rejections[0].Line)
	assert.Equal(t, "empty code", batch.Rejections[1].Reason)

	assert.Equal(t, inventory.ProductRow{Code: "P-001", Name: "마우스", Category: "전자제품", Stock: 45, SafetyStock: 10}, batch.Rows[0])
	assert.Equal(t, inventory.ProductRow{Code: "P-005", Name: "펜, 검정", Category: "사무용품", Stock: 12, SafetyStock: 0}, batch.Rows[1])
}

func TestParse_HeaderOnlyIsEmpty(t *testing.T) {
	_, err := csvio.Parse("category,code,name,stock,safetyStock")
	assert.ErrorIs(t, err, inventory.ErrEmptyImport)

	batch, err := csvio.Parse("category,code,name,stock,safetyStock\n")
	require.NoError(t, err)
	assert.Empty(t, batch.Rows)
	assert.Zero(t, batch.Failed)
}

// =============================================================================
// IMPORT
// =============================================================================

func TestImport_ExportIsIdempotent(t *testing.T) {
	// GIVEN: A catalog, including separators in category and code, and its
	// own export
	products := append(catalog(),
		inventory.Product{ID: 6, Code: `Q"1`, Name: "n", Category: "Desk, Chair", Stock: 5, SafetyStock: 1})
	importer, ledger := newTestImporter(t, products...)
	ctx := context.Background()

	before, err := ledger.Products(ctx)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, csvio.Export(&buf, before, csvio.KoreanLabels))

	// WHEN: Importing the export back
	res, err := importer.Import(ctx, buf.String())
	require.NoError(t, err)

	// THEN: Nothing changes and every row is an update
	assert.Equal(t, len(before), res.Success)
	assert.Zero(t, res.Failed)
	assert.Zero(t, res.Added)
	assert.Equal(t, len(before), res.Updated)

	after, err := ledger.Products(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestImport_NewCodesGetFreshIDs(t *testing.T) {
	// GIVEN: A catalog whose max id is 5
	importer, ledger := newTestImporter(t, catalog()...)
	ctx := context.Background()

	// WHEN: Importing one existing code and two new ones
	raw := "category,code,name,stock,safetyStock\n" +
		"전자제품,P-002,기계식 키보드,30,15\n" +
		"가구,N-1,책상,4,2\n" +
		"가구,N-2,의자,6,2\n"
	res, err := importer.Import(ctx, raw)
	require.NoError(t, err)

	// THEN: The existing code keeps its id, new codes get 6 and 7 in row order
	assert.Equal(t, 3, res.Success)
	assert.Equal(t, 1, res.Updated)
	assert.Equal(t, 2, res.Added)

	products, err := ledger.Products(ctx)
	require.NoError(t, err)
	require.Len(t, products, 5)

	assert.Equal(t, inventory.ProductID(2), products[1].ID)
	assert.Equal(t, 30, products[1].Stock)
	assert.Equal(t, inventory.ProductID(6), products[3].ID)
	assert.Equal(t, "N-1", products[3].Code)
	assert.Equal(t, inventory.ProductID(7), products[4].ID)
	assert.Equal(t, "N-2", products[4].Code)
}

func TestImport_NothingAcceptedLeavesCatalog(t *testing.T) {
	// GIVEN: A payload where every row is rejected
	importer, ledger := newTestImporter(t, catalog()...)
	ctx := context.Background()
	raw := "category,code,name,stock,safetyStock\n,,,,\nx,P-9,name,abc,1\n"

	// WHEN: Importing
	res, err := importer.Import(ctx, raw)

	// THEN: EmptyImport, failures still counted, catalog unchanged
	require.ErrorIs(t, err, inventory.ErrEmptyImport)
	assert.Equal(t, 2, res.Failed)
	assert.Zero(t, res.Success)

	products, err := ledger.Products(ctx)
	require.NoError(t, err)
	assert.Equal(t, catalog(), products)
}

func TestImport_BatchID(t *testing.T) {
	importer, _ := newTestImporter(t)
	res, err := importer.Import(context.Background(), "c,code,n,s,ss\n가구,N-1,책상,4,2")
	require.NoError(t, err)

	_, err = uuid.Parse(res.BatchID)
	assert.NoError(t, err)
	assert.Equal(t, 1, res.Added)
}

// =============================================================================
// EXPORT
// =============================================================================

func TestExport_Format(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, csvio.Export(&buf, catalog(), csvio.KoreanLabels))

	out := buf.String()
	require.True(t, strings.HasPrefix(out, "\uFEFF"))
	assert.False(t, strings.HasSuffix(out, "\n"))

	lines := strings.Split(strings.TrimPrefix(out, "\uFEFF"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "카테고리,제품코드,제품명,현재재고,적정재고,상태", lines[0])
	assert.Equal(t, `전자제품,P-001,"무선 마우스",45,10,정상`, lines[1])
	assert.Equal(t, `전자제품,P-002,"기계식 키보드",8,15,부족`, lines[2])
	assert.Equal(t, `전자제품,P-005,"27인치 ""QHD"" 모니터",3,5,부족`, lines[3])
}

func TestExport_QuotesSeparatorsInCategoryAndCode(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, csvio.Export(&buf, []inventory.Product{
		{ID: 1, Code: `Q"1`, Name: "n", Category: "Desk, Chair", Stock: 5, SafetyStock: 1},
	}, csvio.EnglishLabels))

	lines := strings.Split(buf.String(), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, `"Desk, Chair","Q""1","n",5,1,Normal`, lines[1])
	assert.Equal(t, []string{"Desk, Chair", `Q"1`, "n", "5", "1", "Normal"}, csvio.SplitLine(lines[1]))
}

func TestExport_EnglishLabels(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, csvio.Export(&buf, catalog()[:1], csvio.LabelsFor("en")))
	assert.Equal(t, "\uFEFFCategory,Code,Name,Stock,SafetyStock,Status\n전자제품,P-001,\"무선 마우스\",45,10,Normal", buf.String())
}

func TestExportFilename(t *testing.T) {
	day := time.Date(2024, time.March, 1, 15, 4, 0, 0, time.UTC)
	assert.Equal(t, "재고현황_2024-03-01.csv", csvio.ExportFilename(csvio.KoreanLabels.FilePrefix, day))
}
