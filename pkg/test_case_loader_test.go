package itest

import (
	"strings"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/google/go-cmp/cmp"
	"github.com/kr/pretty"
)

const orderTest = `
name: OrderCreated
package: orders
author: qa
description: creates an order
groups: [smoke, orders]
variables:
  customer: acme
  label: order-${customer}
  order:
    id: 1
actions:
- echo: Hello ${customer}
- name: check
  fail: broken
finally:
- echo: bye
`

func TestNewTestCaseFromDef(t *testing.T) {
	d, err := ReadTestCaseDefFromBytes([]byte(orderTest))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tc, err := NewTestCaseFromDef(d, WithPackage("override"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if tc.FullName() != "override.OrderCreated" {
		t.Errorf("unexpected full name %s", tc.FullName())
	}

	if diff := cmp.Diff(MetaInfo{Author: "qa", Description: "creates an order", Status: StatusPending}, tc.MetaInfo()); diff != "" {
		t.Errorf("MetaInfo() mismatch (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff([]string{"smoke", "orders"}, tc.Groups()); diff != "" {
		t.Errorf("Groups() mismatch (-want +got):\n%s", diff)
	}

	expectedVars := []Variable{
		{Name: "customer", Value: "acme"},
		{Name: "label", Value: "order-${customer}"},
		{Name: "order", Value: map[string]interface{}{"id": 1}},
	}
	if actual := tc.Variables(); !cmp.Equal(expectedVars, actual) {
		t.Errorf("actual variables %s don't match expected variables %s\ndiff=%s", spew.Sdump(actual), spew.Sdump(expectedVars), strings.Join(pretty.Diff(actual, expectedVars), "\n"))
	}

	names := func(actions []Action) []string {
		result := []string{}
		for _, a := range actions {
			result = append(result, a.GetName())
		}
		return result
	}
	if diff := cmp.Diff([]string{"action-1", "check"}, names(tc.Actions())); diff != "" {
		t.Errorf("Actions() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"finally-1"}, names(tc.Finally())); diff != "" {
		t.Errorf("Finally() mismatch (-want +got):\n%s", diff)
	}

	err = tc.DoExecute(NewContext())
	if err == nil || !strings.Contains(err.Error(), "failed in action 'check': broken") {
		t.Errorf("unexpected error: %v", err)
	}
	if v, _ := tc.Context().GetVariable("label"); v != "order-acme" {
		t.Errorf("unexpected label %v", v)
	}
}

func TestNewTestCaseFromDefErrors(t *testing.T) {
	testcases := []struct {
		source  string
		message string
	}{
		{source: "name: T\nunknown: 1", message: "field unknown not found"},
		{source: "name: T\nstatus: paused", message: "unknown test status"},
		{source: "name: T\nactions:\n- nosuch: x", message: `unknown action "nosuch"`},
		{source: "name: T\nfinally:\n- nosuch: x", message: "finally[0]"},
		{source: "variables:\n  a: 1", message: "test case name must not be empty"},
		{source: "name: T\nvariables:\n  1: x", message: "variable name 1 is not a string"},
	}

	for _, tc := range testcases {
		t.Run(tc.message, func(t *testing.T) {
			d, err := ReadTestCaseDefFromBytes([]byte(tc.source))
			if err == nil {
				_, err = NewTestCaseFromDef(d)
			}
			if err == nil {
				t.Fatalf("expected error containing %q", tc.message)
			}
			if !strings.Contains(err.Error(), tc.message) {
				t.Errorf("unexpected message: want %q in %q", tc.message, err.Error())
			}
		})
	}
}

func TestDisabledTestCaseFromDef(t *testing.T) {
	d, err := ReadTestCaseDefFromBytes([]byte("name: T\nstatus: disabled\nactions:\n- fail: never"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tc, err := NewTestCaseFromDef(d)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := tc.DoExecute(NewContext()); err != nil {
		t.Errorf("disabled test should not run: %v", err)
	}
}
