package messages

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/taoyao-code/charge-console/internal/starttx"
)

//go:embed default.yaml
var defaultCatalog []byte

// Catalog 文案目录：locale -> key -> 模板，模板参数形如 {{chargeBoxID}}
type Catalog struct {
	DefaultLocale string                       `yaml:"defaultLocale"`
	Locales       map[string]map[string]string `yaml:"locales"`
}

// Rendered 渲染后的消息
type Rendered struct {
	Key      string           `json:"key"`
	Text     string           `json:"text"`
	Category starttx.Category `json:"category,omitempty"`
	Route    string           `json:"route,omitempty"`
}

var placeholder = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_]+)\s*\}\}`)

// Default 内置目录
func Default() *Catalog {
	c, err := Parse(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("messages: invalid embedded catalog: %v", err))
	}
	return c
}

// Load 从文件加载目录；path 为空时返回内置目录
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read message catalog: %w", err)
	}
	return Parse(b)
}

// Parse 解析 YAML 目录
func Parse(b []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("unmarshal message catalog: %w", err)
	}
	if c.Locales == nil {
		c.Locales = make(map[string]map[string]string)
	}
	if c.DefaultLocale == "" {
		c.DefaultLocale = "en"
	}
	return &c, nil
}

// Text 查找模板：先 locale（含 "fr-FR" -> "fr" 回退），再默认 locale，最后返回 key 本身
func (c *Catalog) Text(locale, key string) string {
	if c == nil {
		return key
	}
	for _, l := range c.candidates(locale) {
		if t, ok := c.Locales[l][key]; ok {
			return t
		}
	}
	return key
}

func (c *Catalog) candidates(locale string) []string {
	locale = strings.ToLower(strings.TrimSpace(locale))
	out := make([]string, 0, 3)
	if locale != "" {
		out = append(out, locale)
		if i := strings.IndexAny(locale, "-_"); i > 0 {
			out = append(out, locale[:i])
		}
	}
	return append(out, c.DefaultLocale)
}

// Render 渲染消息；缺失的参数保留占位符原样
func (c *Catalog) Render(locale string, m starttx.Message) Rendered {
	text := placeholder.ReplaceAllStringFunc(c.Text(locale, m.Key), func(s string) string {
		name := placeholder.FindStringSubmatch(s)[1]
		if v, ok := m.Params[name]; ok {
			return v
		}
		return s
	})
	return Rendered{Key: m.Key, Text: text, Category: m.Category, Route: m.Route}
}
