package tools

import (
	"context"
	"encoding/json"
	"fmt"
)

// CalculatorSchema is the argument contract for the calculator tool.
var CalculatorSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"operation": {
			"type": "string",
			"enum": ["add", "subtract", "multiply", "divide"]
		},
		"a": {"type": "number"},
		"b": {"type": "number"}
	},
	"required": ["operation", "a", "b"],
	"additionalProperties": false
}`)

// Calculator returns the built-in arithmetic tool. Division by zero is
// reported in the result payload, not as an executor error, so the model
// sees the same {"error": ...} shape as any other tool failure.
func Calculator() Definition {
	return Definition{
		Name:        "calculator",
		Description: "Perform basic arithmetic: add, subtract, multiply, or divide two numbers.",
		Schema:      CalculatorSchema,
		Execute: func(_ context.Context, args map[string]any) (any, error) {
			op, _ := args["operation"].(string)
			a := toFloat(args["a"])
			b := toFloat(args["b"])

			var result float64
			switch op {
			case "add":
				result = a + b
			case "subtract":
				result = a - b
			case "multiply":
				result = a * b
			case "divide":
				if b == 0 {
					return nil, fmt.Errorf("division by zero")
				}
				result = a / b
			default:
				return nil, fmt.Errorf("unsupported operation: %s", op)
			}
			return map[string]any{"operation": op, "result": result}, nil
		},
	}
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case json.Number:
		f, _ := n.Float64()
		return f
	}
	return 0
}
