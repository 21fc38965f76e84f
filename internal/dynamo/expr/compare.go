package expr

import (
	"bytes"
	"strconv"

	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// typeTag returns DynamoDB's type tag for an attribute value (S, N, B, BOOL,
// NULL, L, M, SS, NS, BS), as used by the attribute_type() function.
func typeTag(v ddbtypes.AttributeValue) string {
	switch v.(type) {
	case *ddbtypes.AttributeValueMemberS:
		return "S"
	case *ddbtypes.AttributeValueMemberN:
		return "N"
	case *ddbtypes.AttributeValueMemberB:
		return "B"
	case *ddbtypes.AttributeValueMemberBOOL:
		return "BOOL"
	case *ddbtypes.AttributeValueMemberNULL:
		return "NULL"
	case *ddbtypes.AttributeValueMemberL:
		return "L"
	case *ddbtypes.AttributeValueMemberM:
		return "M"
	case *ddbtypes.AttributeValueMemberSS:
		return "SS"
	case *ddbtypes.AttributeValueMemberNS:
		return "NS"
	case *ddbtypes.AttributeValueMemberBS:
		return "BS"
	default:
		return ""
	}
}

// Equal reports whether a and b are the same type and value.
func Equal(a, b ddbtypes.AttributeValue) bool {
	return Compare(a, b) == 0
}

// Compare orders two attribute values: S and B compare lexically, N
// numerically, and BOOL/NULL values of the same type compare equal (0) when
// their values match. It returns -2 ("not comparable") for values of
// different types, an unparsable number, unequal BOOLs, and any L, M or set
// value, so such values are never Equal.
func Compare(a, b ddbtypes.AttributeValue) int {
	switch av := a.(type) {
	case *ddbtypes.AttributeValueMemberS:
		bv, ok := b.(*ddbtypes.AttributeValueMemberS)
		if !ok {
			return -2
		}
		switch {
		case av.Value < bv.Value:
			return -1
		case av.Value > bv.Value:
			return 1
		default:
			return 0
		}
	case *ddbtypes.AttributeValueMemberN:
		bv, ok := b.(*ddbtypes.AttributeValueMemberN)
		if !ok {
			return -2
		}
		af, aerr := strconv.ParseFloat(av.Value, 64)
		bf, berr := strconv.ParseFloat(bv.Value, 64)
		if aerr != nil || berr != nil {
			return -2
		}
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	case *ddbtypes.AttributeValueMemberB:
		bv, ok := b.(*ddbtypes.AttributeValueMemberB)
		if !ok {
			return -2
		}
		return bytes.Compare(av.Value, bv.Value)
	case *ddbtypes.AttributeValueMemberBOOL:
		bv, ok := b.(*ddbtypes.AttributeValueMemberBOOL)
		if !ok || av.Value != bv.Value {
			return -2
		}
		return 0
	case *ddbtypes.AttributeValueMemberNULL:
		_, ok := b.(*ddbtypes.AttributeValueMemberNULL)
		if !ok {
			return -2
		}
		return 0
	default:
		return -2
	}
}

// addNumeric adds two N-valued attributes, returning a new N attribute.
func addNumeric(a, b *ddbtypes.AttributeValueMemberN) (*ddbtypes.AttributeValueMemberN, error) {
	af, err := strconv.ParseFloat(a.Value, 64)
	if err != nil {
		return nil, err
	}
	bf, err := strconv.ParseFloat(b.Value, 64)
	if err != nil {
		return nil, err
	}
	return &ddbtypes.AttributeValueMemberN{Value: formatNumber(af + bf)}, nil
}

func subNumeric(a, b *ddbtypes.AttributeValueMemberN) (*ddbtypes.AttributeValueMemberN, error) {
	af, err := strconv.ParseFloat(a.Value, 64)
	if err != nil {
		return nil, err
	}
	bf, err := strconv.ParseFloat(b.Value, 64)
	if err != nil {
		return nil, err
	}
	return &ddbtypes.AttributeValueMemberN{Value: formatNumber(af - bf)}, nil
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
