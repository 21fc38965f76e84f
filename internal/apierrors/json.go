package apierrors

import "encoding/json"

func mustMarshalDynamoError(v dynamoJSONError) []byte {
	out, err := json.Marshal(v)
	if err != nil {
		// dynamoJSONError only ever holds plain strings; this cannot fail.
		panic(err)
	}
	return out
}
