package judilibre

import "github.com/yeisme/sociojustice/pkg/configs"

// NewSource mock 模式返回离线样例，否则返回真实客户端.
func NewSource(cfg configs.JudilibreConfig, opts ...Option) (Source, error) {
	if cfg.Mock {
		return NewFixture(cfg.FixturePath)
	}

	return NewClient(cfg, opts...), nil
}
