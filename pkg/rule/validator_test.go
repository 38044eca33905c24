package rule_test

import (
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"

	"github.com/yeisme/sociojustice/pkg/rule"
)

// importWindow 模拟导入请求的日期窗口.
type importWindow struct {
	From  string `json:"dateDecisionMin" rule:"required,ymd"`
	To    string `json:"dateDecisionMax" rule:"required,ymd"`
	Query string `json:"query"           rule:"max=8"`
}

// TestEngine 测试 Engine 函数返回非 nil 实例.
func TestEngine(t *testing.T) {
	if rule.Engine() == nil {
		t.Error("Engine() returned nil")
	}
}

// TestValidateStruct 测试 ymd 规则与字段名映射.
func TestValidateStruct(t *testing.T) {
	if err := rule.ValidateStruct(importWindow{From: "2020-01-01", To: "2020-12-31"}); err != nil {
		t.Errorf("Expected no error for valid window, got %v", err)
	}

	cases := map[string]importWindow{
		"dateDecisionMin": {From: "", To: "2020-12-31"},
		"dateDecisionMax": {From: "2020-01-01", To: "2020-02-30"},
		"query":           {From: "2020-01-01", To: "2020-12-31", Query: "too long query"},
	}

	for field, in := range cases {
		err := rule.ValidateStruct(in)
		if err == nil {
			t.Errorf("%s: expected error, got nil", field)
			continue
		}

		if _, ok := rule.Errors(err)[field]; !ok {
			t.Errorf("%s: expected field in errors, got %v", field, rule.Errors(err))
		}
	}
}

// TestMessage 测试可读错误信息.
func TestMessage(t *testing.T) {
	err := rule.ValidateStruct(importWindow{From: "01/01/2020"})

	msg := rule.Message(err)
	if !strings.HasPrefix(msg, "invalid dateDecisionMax failed on required; dateDecisionMin failed on ymd") {
		t.Errorf("unexpected message %q", msg)
	}
}

// TestValidateVar 测试 ValidateVar 对变量的验证.
func TestValidateVar(t *testing.T) {
	if err := rule.ValidateVar("test@example.com", "required,email"); err != nil {
		t.Errorf("Expected no error for valid email, got %v", err)
	}

	if err := rule.ValidateVar("invalid-email", "required,email"); err == nil {
		t.Error("Expected error for invalid email, got nil")
	}

	if err := rule.ValidateVar("2024-02-29", "ymd"); err != nil {
		t.Errorf("Expected leap day to be valid, got %v", err)
	}

	if err := rule.ValidateVar("2023-02-29", "ymd"); err == nil {
		t.Error("Expected error for invalid calendar date, got nil")
	}
}

// TestRegisterValidation 测试注册自定义验证.
func TestRegisterValidation(t *testing.T) {
	err := rule.RegisterValidation("even_length", func(fl validator.FieldLevel) bool {
		str, ok := fl.Field().Interface().(string)
		if !ok {
			return false
		}

		return len(str)%2 == 0
	})
	if err != nil {
		t.Fatalf("Failed to register validation: %v", err)
	}

	if err := rule.ValidateVar("test", "even_length"); err != nil {
		t.Errorf("Expected no error for even length string, got %v", err)
	}

	if err := rule.ValidateVar("test1", "even_length"); err == nil {
		t.Error("Expected error for odd length string, got nil")
	}
}

// TestRegisterAlias 测试注册别名.
func TestRegisterAlias(t *testing.T) {
	rule.RegisterAlias("min_required", "required,min=3")

	if err := rule.ValidateVar("abc", "min_required"); err != nil {
		t.Errorf("Expected no error for valid string with alias, got %v", err)
	}

	if err := rule.ValidateVar("ab", "min_required"); err == nil {
		t.Error("Expected error for invalid string with alias, got nil")
	}
}
