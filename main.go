package main

import (
	"github.com/solquestio/solquest-api/config"
	"github.com/solquestio/solquest-api/models"
	"github.com/solquestio/solquest-api/routes"
	"github.com/solquestio/solquest-api/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(
		&models.User{},
		&models.CheckIn{},
		&models.Quest{},
		&models.QuestCompletion{},
		&models.SecretCode{},
	)

	r := routes.SetupRouter(db)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
