package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

const msgInvalidBody = "Invalid request body."

// bindRequest 绑定请求体。缺少 binding:"required" 字段时回复 missingMsg，
// 其他绑定错误（格式错误的 JSON、类型不符）回复 msgInvalidBody。
func bindRequest(c *gin.Context, req any, missingMsg string) bool {
	err := c.ShouldBind(req)
	if err == nil {
		return true
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		BadRequest(c, missingMsg)
	} else {
		BadRequest(c, msgInvalidBody)
	}
	return false
}

// blank reports whether any value is empty after trimming.
func blank(values ...string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			return true
		}
	}
	return false
}

// flexString 接受 JSON 字符串或数字，表单提交与 JSON 客户端都会用到。
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected string or number: %w", err)
	}
	*f = flexString(n.String())
	return nil
}

// UnmarshalParam lets gin's form binding fill the field.
func (f *flexString) UnmarshalParam(param string) error {
	*f = flexString(param)
	return nil
}

func (f flexString) String() string { return strings.TrimSpace(string(f)) }

var (
	errNotNumber  = errors.New("must be a number")
	errNotInteger = errors.New("must be a non-negative integer")
)

func (f flexString) Float() (float64, error) {
	v, err := strconv.ParseFloat(f.String(), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errNotNumber
	}
	return v, nil
}

func (f flexString) Int() (int, error) {
	v, err := strconv.Atoi(f.String())
	if err != nil || v < 0 {
		return 0, errNotInteger
	}
	return v, nil
}

// csvList 接受逗号分隔字符串或字符串数组。
// 表单绑定把切片字段按原样填入，绑定后需调用 normalize 再拆分。
type csvList []string

func (l *csvList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}
	if len(data) > 0 && data[0] == '[' {
		var items []string
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		*l = csvList(compact(items))
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("expected comma separated string or array: %w", err)
	}
	*l = csvList(splitCSV(s))
	return nil
}

// normalize 拆分每个元素中的逗号，重复的表单字段也会合并。
func (l csvList) normalize() csvList {
	return csvList(splitCSV(strings.Join(l, ",")))
}

// splitCSV keeps the order of the input and drops blank entries.
func splitCSV(s string) []string {
	return compact(strings.Split(s, ","))
}

func compact(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
