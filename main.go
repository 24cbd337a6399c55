package main

import (
	"context"
	"time"

	"atelier/config"
	"atelier/database"
	"atelier/gallery"
	"atelier/handlers"
	"atelier/middleware"
	"atelier/storage"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	godotenv.Load()
	config.InitLogger()

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatal(err)
	}

	// Create context with timeout for initial connection
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		logrus.Fatal("Failed to connect to database: ", err)
	}
	defer db.Close()

	backend, err := newBackend(cfg)
	if err != nil {
		logrus.Fatal(err)
	}
	logrus.Infof("Storage backend: %s", backend.Name())

	svc := gallery.NewService(db, backend)

	r := gin.Default()
	r.MaxMultipartMemory = 50 << 20

	r.GET("/health", handlers.HealthCheck)
	r.POST("/register", handlers.Register(db))
	r.POST("/login", handlers.Login(db, cfg.JWTSecret))

	r.GET("/projects", handlers.ListProjects(db))
	r.GET("/projects/:id", handlers.GetProject(db))
	r.GET("/projects-with-gallery", handlers.ListProjectsWithGallery(svc))
	r.GET("/gallery", handlers.ListGallery(svc))

	if fs, ok := backend.(*storage.Filesystem); ok {
		r.Static(fs.URLPrefix, fs.Dir)
	}

	auth := r.Group("/", middleware.AuthRequired(cfg.JWTSecret))
	auth.POST("/projects", handlers.SaveProject(db))
	auth.DELETE("/projects/:id", handlers.DeleteProject(svc))
	auth.POST("/projects/:id/gallery", handlers.UploadImages(svc))
	auth.DELETE("/gallery/:id", handlers.DeleteImage(svc))
	auth.PUT("/gallery/:id", handlers.ReplaceImage(svc))

	logrus.Infof("Server starting on :%s", cfg.Port)
	r.Run(":" + cfg.Port)
}

func newBackend(cfg *config.Config) (storage.Backend, error) {
	if cfg.StorageBackend == config.StorageDatabase {
		return storage.NewInline(), nil
	}
	return storage.NewFilesystem(cfg.UploadDir)
}
