package prompt

import "fmt"

// UnknownStyleError rewrite 请求的风格不在风格表中
type UnknownStyleError struct {
	Style string
}

func (e *UnknownStyleError) Error() string {
	return fmt.Sprintf("unknown style: %q", e.Style)
}

// UnknownOptionError tone/audience/length 取值不在词表中
type UnknownOptionError struct {
	Field string
	Value string
}

func (e *UnknownOptionError) Error() string {
	return fmt.Sprintf("unknown %s: %q", e.Field, e.Value)
}
