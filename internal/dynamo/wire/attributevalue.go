// Package wire implements the DynamoDB low-level JSON protocol's
// marshal/unmarshal pair for the AWS SDK's own AttributeValue type. The SDK
// does not expose this codec itself — its marshaling lives inside its
// smithy-generated transport and is not reusable for a server that speaks the
// wire protocol directly — so it is hand-written here, matching the tagged
// union the reference implementation's AttributeValue enum represents.
package wire

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// MarshalAttributeValue renders v as the DynamoDB wire JSON object, e.g.
// {"S":"hello"} or {"M":{"a":{"N":"1"}}}.
func MarshalAttributeValue(v ddbtypes.AttributeValue) (json.RawMessage, error) {
	switch vv := v.(type) {
	case *ddbtypes.AttributeValueMemberS:
		return marshalTagged("S", vv.Value)
	case *ddbtypes.AttributeValueMemberN:
		return marshalTagged("N", vv.Value)
	case *ddbtypes.AttributeValueMemberB:
		return marshalTagged("B", base64.StdEncoding.EncodeToString(vv.Value))
	case *ddbtypes.AttributeValueMemberBOOL:
		return marshalTagged("BOOL", vv.Value)
	case *ddbtypes.AttributeValueMemberNULL:
		return marshalTagged("NULL", vv.Value)
	case *ddbtypes.AttributeValueMemberSS:
		return marshalTagged("SS", vv.Value)
	case *ddbtypes.AttributeValueMemberNS:
		return marshalTagged("NS", vv.Value)
	case *ddbtypes.AttributeValueMemberBS:
		encoded := make([]string, len(vv.Value))
		for i, b := range vv.Value {
			encoded[i] = base64.StdEncoding.EncodeToString(b)
		}
		return marshalTagged("BS", encoded)
	case *ddbtypes.AttributeValueMemberL:
		items := make([]json.RawMessage, len(vv.Value))
		for i, elem := range vv.Value {
			raw, err := MarshalAttributeValue(elem)
			if err != nil {
				return nil, err
			}
			items[i] = raw
		}
		return marshalTagged("L", items)
	case *ddbtypes.AttributeValueMemberM:
		m := make(map[string]json.RawMessage, len(vv.Value))
		for k, elem := range vv.Value {
			raw, err := MarshalAttributeValue(elem)
			if err != nil {
				return nil, err
			}
			m[k] = raw
		}
		return marshalTagged("M", m)
	default:
		return nil, fmt.Errorf("unsupported AttributeValue type %T", v)
	}
}

func marshalTagged(tag string, value any) (json.RawMessage, error) {
	return json.Marshal(map[string]any{tag: value})
}

// UnmarshalAttributeValue parses a DynamoDB wire JSON object into the AWS
// SDK's AttributeValue tagged union.
func UnmarshalAttributeValue(raw json.RawMessage) (ddbtypes.AttributeValue, error) {
	var tagged map[string]json.RawMessage
	if err := json.Unmarshal(raw, &tagged); err != nil {
		return nil, err
	}
	if len(tagged) != 1 {
		return nil, fmt.Errorf("attribute value must have exactly one type tag, got %d", len(tagged))
	}

	for tag, body := range tagged {
		switch tag {
		case "S":
			var s string
			if err := json.Unmarshal(body, &s); err != nil {
				return nil, err
			}
			return &ddbtypes.AttributeValueMemberS{Value: s}, nil
		case "N":
			var s string
			if err := json.Unmarshal(body, &s); err != nil {
				return nil, err
			}
			return &ddbtypes.AttributeValueMemberN{Value: s}, nil
		case "B":
			var s string
			if err := json.Unmarshal(body, &s); err != nil {
				return nil, err
			}
			b, err := base64.StdEncoding.DecodeString(s)
			if err != nil {
				return nil, err
			}
			return &ddbtypes.AttributeValueMemberB{Value: b}, nil
		case "BOOL":
			var b bool
			if err := json.Unmarshal(body, &b); err != nil {
				return nil, err
			}
			return &ddbtypes.AttributeValueMemberBOOL{Value: b}, nil
		case "NULL":
			var b bool
			if err := json.Unmarshal(body, &b); err != nil {
				return nil, err
			}
			return &ddbtypes.AttributeValueMemberNULL{Value: b}, nil
		case "SS":
			var ss []string
			if err := json.Unmarshal(body, &ss); err != nil {
				return nil, err
			}
			return &ddbtypes.AttributeValueMemberSS{Value: ss}, nil
		case "NS":
			var ns []string
			if err := json.Unmarshal(body, &ns); err != nil {
				return nil, err
			}
			return &ddbtypes.AttributeValueMemberNS{Value: ns}, nil
		case "BS":
			var encoded []string
			if err := json.Unmarshal(body, &encoded); err != nil {
				return nil, err
			}
			bs := make([][]byte, len(encoded))
			for i, s := range encoded {
				b, err := base64.StdEncoding.DecodeString(s)
				if err != nil {
					return nil, err
				}
				bs[i] = b
			}
			return &ddbtypes.AttributeValueMemberBS{Value: bs}, nil
		case "L":
			var raws []json.RawMessage
			if err := json.Unmarshal(body, &raws); err != nil {
				return nil, err
			}
			values := make([]ddbtypes.AttributeValue, len(raws))
			for i, r := range raws {
				v, err := UnmarshalAttributeValue(r)
				if err != nil {
					return nil, err
				}
				values[i] = v
			}
			return &ddbtypes.AttributeValueMemberL{Value: values}, nil
		case "M":
			var raws map[string]json.RawMessage
			if err := json.Unmarshal(body, &raws); err != nil {
				return nil, err
			}
			values := make(map[string]ddbtypes.AttributeValue, len(raws))
			for k, r := range raws {
				v, err := UnmarshalAttributeValue(r)
				if err != nil {
					return nil, err
				}
				values[k] = v
			}
			return &ddbtypes.AttributeValueMemberM{Value: values}, nil
		default:
			return nil, fmt.Errorf("unknown attribute value type tag %q", tag)
		}
	}
	panic("unreachable")
}

// ItemMap is the wire shape of an Item: attribute name -> tagged value.
type ItemMap = map[string]json.RawMessage

// MarshalItem renders an Item (map[string]AttributeValue) as its wire form.
func MarshalItem(item map[string]ddbtypes.AttributeValue) (ItemMap, error) {
	out := make(ItemMap, len(item))
	for k, v := range item {
		raw, err := MarshalAttributeValue(v)
		if err != nil {
			return nil, err
		}
		out[k] = raw
	}
	return out, nil
}

// UnmarshalItem parses a wire Item into map[string]AttributeValue.
func UnmarshalItem(raw ItemMap) (map[string]ddbtypes.AttributeValue, error) {
	out := make(map[string]ddbtypes.AttributeValue, len(raw))
	for k, v := range raw {
		av, err := UnmarshalAttributeValue(v)
		if err != nil {
			return nil, err
		}
		out[k] = av
	}
	return out, nil
}
