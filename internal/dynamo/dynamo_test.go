package dynamo

import (
	"testing"

	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stackbox/internal/apierrors"
	"stackbox/internal/dynamo/expr"
)

func testClock() int64 { return 1700000000 }

func strAttr(v string) *ddbtypes.AttributeValueMemberS { return &ddbtypes.AttributeValueMemberS{Value: v} }
func numAttr(v string) *ddbtypes.AttributeValueMemberN { return &ddbtypes.AttributeValueMemberN{Value: v} }

func simpleKeySchema() []ddbtypes.KeySchemaElement {
	pk := "pk"
	sk := "sk"
	return []ddbtypes.KeySchemaElement{
		{AttributeName: &pk, KeyType: ddbtypes.KeyTypeHash},
		{AttributeName: &sk, KeyType: ddbtypes.KeyTypeRange},
	}
}

func newTestTable(t *testing.T) *Table {
	reg := NewRegistry(testClock)
	tbl, err := reg.CreateTable("orders", simpleKeySchema(), nil, nil, nil)
	require.NoError(t, err)
	return tbl
}

func TestCreateTableDuplicateFails(t *testing.T) {
	reg := NewRegistry(testClock)
	_, err := reg.CreateTable("orders", simpleKeySchema(), nil, nil, nil)
	require.NoError(t, err)
	_, err = reg.CreateTable("orders", simpleKeySchema(), nil, nil, nil)
	require.Error(t, err)
	assert.True(t, apierrors.IsKind(err, apierrors.KindResourceInUseException))
}

func TestPutGetDeleteItem(t *testing.T) {
	tbl := newTestTable(t)

	item := Item{"pk": strAttr("cust#1"), "sk": strAttr("order#1"), "amount": numAttr("42")}
	_, err := tbl.PutItem(item, nil, nil)
	require.NoError(t, err)

	got, ok, err := tbl.GetItem(Item{"pk": strAttr("cust#1"), "sk": strAttr("order#1")})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "42", got["amount"].(*ddbtypes.AttributeValueMemberN).Value)

	old, existed, err := tbl.DeleteItem(Item{"pk": strAttr("cust#1"), "sk": strAttr("order#1")}, nil, nil)
	require.NoError(t, err)
	require.True(t, existed)
	assert.Equal(t, "42", old["amount"].(*ddbtypes.AttributeValueMemberN).Value)

	_, ok, err = tbl.GetItem(Item{"pk": strAttr("cust#1"), "sk": strAttr("order#1")})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPutItemConditionalFailure(t *testing.T) {
	tbl := newTestTable(t)

	cond, err := expr.ParseCondition("attribute_not_exists(pk)")
	require.NoError(t, err)

	item := Item{"pk": strAttr("cust#1"), "sk": strAttr("order#1")}
	_, err = tbl.PutItem(item, cond, &expr.SubstitutionContext{})
	require.NoError(t, err)

	_, err = tbl.PutItem(item, cond, &expr.SubstitutionContext{})
	require.Error(t, err)
	assert.True(t, apierrors.IsKind(err, apierrors.KindConditionalCheckFailedException))
}

func TestUpdateItemArithmetic(t *testing.T) {
	tbl := newTestTable(t)

	_, err := tbl.PutItem(Item{"pk": strAttr("c1"), "sk": strAttr("s1"), "count": numAttr("5")}, nil, nil)
	require.NoError(t, err)

	plan, err := expr.ParseUpdate("SET #c = #c + :inc")
	require.NoError(t, err)
	ctx := &expr.SubstitutionContext{
		Names:  map[string]string{"#c": "count"},
		Values: map[string]ddbtypes.AttributeValue{":inc": numAttr("1")},
	}

	_, after, err := tbl.UpdateItem(Item{"pk": strAttr("c1"), "sk": strAttr("s1")}, plan, nil, ctx, ReturnAllNew)
	require.NoError(t, err)
	assert.Equal(t, "6", after["count"].(*ddbtypes.AttributeValueMemberN).Value)
}

func TestQueryFilterReducesCountNotScannedCount(t *testing.T) {
	tbl := newTestTable(t)
	for i, amount := range []string{"10", "20", "30", "40", "50"} {
		item := Item{
			"pk":     strAttr("c1"),
			"sk":     strAttr(string(rune('a' + i))),
			"amount": numAttr(amount),
		}
		_, err := tbl.PutItem(item, nil, nil)
		require.NoError(t, err)
	}

	kc, err := expr.ParseKeyCondition("pk = :pk")
	require.NoError(t, err)
	filter, err := expr.ParseCondition("amount >= :min")
	require.NoError(t, err)
	ctx := &expr.SubstitutionContext{Values: map[string]ddbtypes.AttributeValue{
		":pk": strAttr("c1"), ":min": numAttr("20"),
	}}

	result, err := tbl.Query(QueryInput{KeyCondition: kc, FilterExpression: filter, Ctx: ctx, ScanForward: true})
	require.NoError(t, err)
	assert.Equal(t, 4, result.Count)
	assert.Equal(t, 5, result.ScannedCount)
}

func TestScanFilter(t *testing.T) {
	tbl := newTestTable(t)
	statuses := []string{"active", "active", "inactive", "active", "inactive"}
	for i, status := range statuses {
		item := Item{
			"pk":     strAttr(string(rune('a' + i))),
			"sk":     strAttr("s"),
			"status": strAttr(status),
		}
		_, err := tbl.PutItem(item, nil, nil)
		require.NoError(t, err)
	}

	filter, err := expr.ParseCondition("#s = :active")
	require.NoError(t, err)
	ctx := &expr.SubstitutionContext{
		Names:  map[string]string{"#s": "status"},
		Values: map[string]ddbtypes.AttributeValue{":active": strAttr("active")},
	}

	result, err := tbl.Scan(QueryInput{FilterExpression: filter, Ctx: ctx})
	require.NoError(t, err)
	assert.Equal(t, 3, result.Count)
}

func TestQueryAgainstGlobalSecondaryIndex(t *testing.T) {
	reg := NewRegistry(testClock)
	gsiPk := "status"
	gsiSk := "pk"
	all := ddbtypes.ProjectionTypeAll
	tbl, err := reg.CreateTable("orders", simpleKeySchema(), nil, []ddbtypes.GlobalSecondaryIndex{
		{
			IndexName: strPtr("status-index"),
			KeySchema: []ddbtypes.KeySchemaElement{
				{AttributeName: &gsiPk, KeyType: ddbtypes.KeyTypeHash},
				{AttributeName: &gsiSk, KeyType: ddbtypes.KeyTypeRange},
			},
			Projection: &ddbtypes.Projection{ProjectionType: all},
		},
	}, nil)
	require.NoError(t, err)

	_, err = tbl.PutItem(Item{"pk": strAttr("o1"), "sk": strAttr("s"), "status": strAttr("open")}, nil, nil)
	require.NoError(t, err)
	_, err = tbl.PutItem(Item{"pk": strAttr("o2"), "sk": strAttr("s"), "status": strAttr("closed")}, nil, nil)
	require.NoError(t, err)

	kc, err := expr.ParseKeyCondition("status = :status")
	require.NoError(t, err)
	ctx := &expr.SubstitutionContext{Values: map[string]ddbtypes.AttributeValue{":status": strAttr("open")}}

	result, err := tbl.Query(QueryInput{IndexName: "status-index", KeyCondition: kc, Ctx: ctx, ScanForward: true})
	require.NoError(t, err)
	require.Equal(t, 1, result.Count)
	assert.Equal(t, "o1", result.Items[0]["pk"].(*ddbtypes.AttributeValueMemberS).Value)
}
