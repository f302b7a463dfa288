package mcp

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/mark3labs/mcp-go/mcp"
)

// bindArguments decodes the arguments of an MCP tool request into target,
// matching keys against json tags. Clients often send every argument as a
// string, so strings are coerced to the field's type: "10" to an int,
// "true" to a bool, and a JSON array or comma-separated list to a slice.
// Returns an error result if the arguments cannot be decoded.
func bindArguments(request mcp.CallToolRequest, target interface{}) *mcp.CallToolResult {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("invalid arguments format")
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			jsonArrayHook,
			mapstructure.StringToSliceHookFunc(","),
		),
		Result:  target,
		TagName: "json",
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err))
	}

	if err := decoder.Decode(args); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err))
	}
	return nil
}

// jsonArrayHook decodes strings holding a JSON array into slice fields.
func jsonArrayHook(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
	if from.Kind() != reflect.String || to.Kind() != reflect.Slice {
		return data, nil
	}

	raw := strings.TrimSpace(data.(string))
	if !strings.HasPrefix(raw, "[") || !strings.HasSuffix(raw, "]") {
		return data, nil
	}

	slicePtr := reflect.New(to)
	if err := json.Unmarshal([]byte(raw), slicePtr.Interface()); err != nil {
		return data, nil
	}
	return slicePtr.Elem().Interface(), nil
}

// cleanList trims every element and drops blank ones.
func cleanList(values []string) []string {
	result := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			result = append(result, v)
		}
	}
	return result
}

// clamp limits val to [min, max].
func clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
