package main

import (
	"flag"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"biodex/internal/mirror"
	"biodex/pkg/utils"
)

func main() {
	var (
		addr = flag.String("addr", ":9000", "listen address")
		dir  = flag.String("dir", mirror.DefaultDir, "directory with captured responses")
	)
	flag.Parse()

	log := utils.MustLogger("info")
	defer func() { _ = log.Sync() }()
	gin.SetMode(gin.ReleaseMode)

	// point the API at it with BIODEX_INAT_URL=http://localhost:9000
	log.Info("mirror-server listening", zap.String("addr", *addr), zap.String("dir", *dir))
	if err := mirror.Router(*dir, log).Run(*addr); err != nil {
		log.Fatal("mirror-server stopped", zap.Error(err))
	}
}
