package main

import "github.com/wader/gojq"

// gojqParse compiles a jq expression, matching the role gojq plays
// inside fq itself: filtering a decoded structure without shelling out
// to a separate jq binary.
func gojqParse(expr string) (*gojq.Code, error) {
	query, err := gojq.Parse(expr)
	if err != nil {
		return nil, err
	}
	return gojq.Compile(query)
}
