// Package main 启动应用程序
package main

import (
	"os"

	"github.com/yeisme/sociojustice/pkg/cmd"
)

//	@title						SocioJustice API
//	@version					0.3.0
//	@description				判例档案服务：从 Judilibre 导入判决、维护关键词、上传 PDF 档案并统一检索。
//	@BasePath					/
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization

//	@license.name	MIT
//	@license.url	https://opensource.org/license/mit/

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
