package judilibre

import (
	"context"
	_ "embed"
	"fmt"
	"os"
)

//go:embed fixtures/decisions.json
var embeddedFixture []byte

// Fixture 离线样例来源，不访问网络.
type Fixture struct {
	page *Page
}

// NewFixture 读取 path 指定的样例文件，path 为空时使用内置样例.
func NewFixture(path string) (*Fixture, error) {
	data := embeddedFixture

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read fixture: %w", err)
		}

		data = b
	}

	page, err := decodePage(data)
	if err != nil {
		return nil, fmt.Errorf("decode fixture: %w", err)
	}

	return &Fixture{page: page}, nil
}

// NewFixtureFromResults 直接用给定条目构造样例来源.
func NewFixtureFromResults(results ...RawDecision) *Fixture {
	return &Fixture{page: &Page{Results: results, Total: len(results)}}
}

// Authenticate 返回固定令牌.
func (f *Fixture) Authenticate(context.Context) (string, error) {
	return "fixture", nil
}

// Search 第一页返回全部样例，之后的页为空.
func (f *Fixture) Search(_ context.Context, _ string, c Criteria) (*Page, error) {
	if c.Page > 0 {
		return &Page{Results: []RawDecision{}, Total: f.page.Total}, nil
	}

	results := make([]RawDecision, len(f.page.Results))
	copy(results, f.page.Results)

	return &Page{Results: results, Total: f.page.Total}, nil
}
