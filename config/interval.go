package config

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Interval 配置中的时间间隔
//
// 文本形式接受 time.ParseDuration 语法（"50ms"），或不带单位的整数，
// 按毫秒解释（"50"）。JSON 中的数字同样按毫秒解释。
// TOML 与环境变量经 encoding.TextUnmarshaler 解析。
type Interval time.Duration

// ParseInterval 解析间隔文本
func ParseInterval(s string) (Interval, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("interval: empty value")
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return Interval(time.Duration(ms) * time.Millisecond), nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("interval: %q: %w", s, err)
	}
	return Interval(d), nil
}

// UnmarshalText 解析 "50ms" 或 "50"
func (iv *Interval) UnmarshalText(text []byte) error {
	v, err := ParseInterval(string(text))
	if err != nil {
		return err
	}
	*iv = v
	return nil
}

// MarshalText 输出 time.Duration 文本形式
func (iv Interval) MarshalText() ([]byte, error) {
	return []byte(iv.String()), nil
}

// UnmarshalJSON 接受字符串或毫秒数
func (iv *Interval) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return iv.UnmarshalText([]byte(s))
	}
	var ms json.Number
	if err := json.Unmarshal(data, &ms); err != nil {
		return fmt.Errorf("interval: want a string like \"50ms\" or milliseconds, got %s", data)
	}
	return iv.UnmarshalText([]byte(ms.String()))
}

// Duration 返回 time.Duration 值
func (iv Interval) Duration() time.Duration { return time.Duration(iv) }

func (iv Interval) String() string { return time.Duration(iv).String() }
