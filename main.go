package main

import (
	"github.com/cppla/bbsplus/config"
	"github.com/cppla/bbsplus/models"
	"github.com/cppla/bbsplus/routes"
	"github.com/cppla/bbsplus/utils"
)

func main() {
	cfg := config.Load()

	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}
	defer utils.Sync()
	defer utils.CloseRedis()

	db := config.InitDatabase(models.PluginModels(), models.HostModels())

	r := routes.SetupRouter(db)

	utils.Sugar.Infof("starting server on port %s, mounted at %s", cfg.AppPort, cfg.MountPath)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Errorf("server stopped with error: %v", err)
	}
}
