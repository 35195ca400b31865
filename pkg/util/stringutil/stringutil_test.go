package stringutil

import (
	"fmt"
	"testing"
)

func TestToTestName(t *testing.T) {
	testcases := []struct {
		input    string
		expected string
	}{
		{input: "tests/order_created-test.yaml", expected: "OrderCreatedTest"},
		{input: "order.yml", expected: "Order"},
		{input: "OrderCheck.yaml", expected: "OrderCheck"},
	}

	for i, tc := range testcases {
		t.Run(fmt.Sprintf("%d", i), func(t *testing.T) {
			if actual := ToTestName(tc.input); actual != tc.expected {
				t.Errorf("ToTestName(%q) = %q, want %q", tc.input, actual, tc.expected)
			}
		})
	}
}

func TestToPackageName(t *testing.T) {
	testcases := []struct {
		root, path string
		expected   string
	}{
		{root: "tests", path: "tests/a.yaml", expected: ""},
		{root: "tests", path: "tests/orders/a.yaml", expected: "orders"},
		{root: "tests", path: "tests/orders/inbound/a.yaml", expected: "orders.inbound"},
	}

	for i, tc := range testcases {
		t.Run(fmt.Sprintf("%d", i), func(t *testing.T) {
			if actual := ToPackageName(tc.root, tc.path); actual != tc.expected {
				t.Errorf("ToPackageName(%q, %q) = %q, want %q", tc.root, tc.path, actual, tc.expected)
			}
		})
	}
}

func TestToEnvironmentName(t *testing.T) {
	testcases := []struct {
		input    string
		expected string
	}{
		{input: "orderId", expected: "ORDER_ID"},
		{input: "schemaRepositories", expected: "SCHEMA_REPOSITORIES"},
		{input: "customer-name", expected: "CUSTOMER_NAME"},
	}

	for i, tc := range testcases {
		t.Run(fmt.Sprintf("%d", i), func(t *testing.T) {
			if actual := ToEnvironmentName(tc.input); actual != tc.expected {
				t.Errorf("ToEnvironmentName(%q) = %q, want %q", tc.input, actual, tc.expected)
			}
		})
	}
}
