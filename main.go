package main

import (
	"github.com/vlogsite/blogify/config"
	"github.com/vlogsite/blogify/models"
	"github.com/vlogsite/blogify/routes"
	"github.com/vlogsite/blogify/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(
		&models.User{},
		&models.Follow{},
		&models.Post{},
		&models.PostReaction{},
		&models.PostView{},
		&models.Comment{},
		&models.CommentLike{},
		&models.Category{},
		&models.Tag{},
	)

	r := routes.SetupRouter(db)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
