package expr

import (
	"testing"

	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func S(v string) *ddbtypes.AttributeValueMemberS { return &ddbtypes.AttributeValueMemberS{Value: v} }
func N(v string) *ddbtypes.AttributeValueMemberN { return &ddbtypes.AttributeValueMemberN{Value: v} }

func TestParseKeyConditionPartitionOnly(t *testing.T) {
	kc, err := ParseKeyCondition("pk = :pk")
	require.NoError(t, err)
	assert.False(t, kc.HasSortKey)

	item := Item{"pk": S("abc")}
	ctx := &SubstitutionContext{Values: map[string]ddbtypes.AttributeValue{":pk": S("abc")}}
	ok, err := EvaluateKeyCondition(kc, item, ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestParseKeyConditionBetweenDoesNotSplitOnAnd(t *testing.T) {
	kc, err := ParseKeyCondition("pk = :pk AND sk BETWEEN :lo AND :hi")
	require.NoError(t, err)
	require.True(t, kc.HasSortKey)
	assert.True(t, kc.SortBetween)

	item := Item{"pk": S("x"), "sk": N("5")}
	ctx := &SubstitutionContext{Values: map[string]ddbtypes.AttributeValue{
		":pk": S("x"), ":lo": N("1"), ":hi": N("10"),
	}}
	ok, err := EvaluateKeyCondition(kc, item, ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestParseKeyConditionBeginsWith(t *testing.T) {
	kc, err := ParseKeyCondition("pk = :pk AND begins_with(sk, :prefix)")
	require.NoError(t, err)
	item := Item{"pk": S("x"), "sk": S("2024-01")}
	ctx := &SubstitutionContext{Values: map[string]ddbtypes.AttributeValue{
		":pk": S("x"), ":prefix": S("2024"),
	}}
	ok, err := EvaluateKeyCondition(kc, item, ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestParseConditionOrAndNotPrecedence(t *testing.T) {
	node, err := ParseCondition("a = :a OR b = :b AND NOT c = :c")
	require.NoError(t, err)

	item := Item{"a": S("no"), "b": S("yes"), "c": S("no")}
	ctx := &SubstitutionContext{Values: map[string]ddbtypes.AttributeValue{
		":a": S("yes"), ":b": S("yes"), ":c": S("yes"),
	}}
	ok, err := Evaluate(node, item, ctx)
	require.NoError(t, err)
	assert.True(t, ok) // b=yes AND NOT(c=yes) => true, ORed with false a-clause
}

func TestParseConditionFunctionsAndParens(t *testing.T) {
	node, err := ParseCondition("(attribute_exists(a) AND contains(tags, :t)) OR attribute_not_exists(missing)")
	require.NoError(t, err)

	item := Item{
		"a":    S("present"),
		"tags": &ddbtypes.AttributeValueMemberSS{Value: []string{"x", "y"}},
	}
	ctx := &SubstitutionContext{Values: map[string]ddbtypes.AttributeValue{":t": S("y")}}
	ok, err := Evaluate(node, item, ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestApplyUpdateSetRemoveAddDelete(t *testing.T) {
	plan, err := ParseUpdate("SET #n = #n + :inc, meta.tag = :tag REMOVE obsolete ADD hits :one DELETE tags :rm")
	require.NoError(t, err)

	item := Item{
		"count":    N("5"),
		"obsolete": S("gone"),
		"hits":     N("1"),
		"meta":     &ddbtypes.AttributeValueMemberM{Value: map[string]ddbtypes.AttributeValue{}},
		"tags":     &ddbtypes.AttributeValueMemberSS{Value: []string{"a", "b"}},
	}
	ctx := &SubstitutionContext{
		Names: map[string]string{"#n": "count"},
		Values: map[string]ddbtypes.AttributeValue{
			":inc": N("1"),
			":tag": S("starred"),
			":one": N("1"),
			":rm":  &ddbtypes.AttributeValueMemberSS{Value: []string{"a"}},
		},
	}

	result, err := Apply(item, plan, ctx)
	require.NoError(t, err)

	assert.Equal(t, "6", result["count"].(*ddbtypes.AttributeValueMemberN).Value)
	assert.NotContains(t, result, "obsolete")
	assert.Equal(t, "2", result["hits"].(*ddbtypes.AttributeValueMemberN).Value)
	assert.Equal(t, []string{"b"}, result["tags"].(*ddbtypes.AttributeValueMemberSS).Value)

	meta := result["meta"].(*ddbtypes.AttributeValueMemberM)
	assert.Equal(t, "starred", meta.Value["tag"].(*ddbtypes.AttributeValueMemberS).Value)

	// original item untouched
	assert.Equal(t, "5", item["count"].(*ddbtypes.AttributeValueMemberN).Value)
}

func TestApplyUpdateIfNotExistsAndListAppend(t *testing.T) {
	plan, err := ParseUpdate("SET createdAt = if_not_exists(createdAt, :now), items = list_append(items, :more)")
	require.NoError(t, err)

	item := Item{
		"items": &ddbtypes.AttributeValueMemberL{Value: []ddbtypes.AttributeValue{S("a")}},
	}
	ctx := &SubstitutionContext{Values: map[string]ddbtypes.AttributeValue{
		":now":  S("2024-01-01"),
		":more": &ddbtypes.AttributeValueMemberL{Value: []ddbtypes.AttributeValue{S("b")}},
	}}

	result, err := Apply(item, plan, ctx)
	require.NoError(t, err)

	assert.Equal(t, "2024-01-01", result["createdAt"].(*ddbtypes.AttributeValueMemberS).Value)
	list := result["items"].(*ddbtypes.AttributeValueMemberL).Value
	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0].(*ddbtypes.AttributeValueMemberS).Value)
	assert.Equal(t, "b", list[1].(*ddbtypes.AttributeValueMemberS).Value)
}
