package handlers

import (
	"net/http"

	"atelier/database"
	"atelier/gallery"
	"atelier/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func ListProjects(db *database.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		projects, err := db.ListProjects(ctx)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, projects)
	}
}

func GetProject(db *database.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID, ok := idParam(c)
		if !ok {
			return
		}

		ctx := c.Request.Context()
		project, err := db.GetProject(ctx, projectID)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, project)
	}
}

// SaveProject creates a project when the payload carries no id, and
// updates the existing row in place otherwise.
func SaveProject(db *database.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.SaveProjectRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			logrus.WithError(err).Debug("Rejected project payload")
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx := c.Request.Context()

		if req.ID == 0 {
			project, err := db.CreateProject(ctx, req)
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusCreated, gin.H{
				"message":    "project created",
				"project_id": project.ID,
			})
			return
		}

		project, err := db.UpdateProject(ctx, req)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message":    "project updated",
			"project_id": project.ID,
		})
	}
}

// DeleteProject goes through the gallery service so the cascade
// (image rows, then files, then the project row) runs in order.
func DeleteProject(svc *gallery.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID, ok := idParam(c)
		if !ok {
			return
		}

		ctx := c.Request.Context()
		if err := svc.DeleteProject(ctx, projectID); err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "project deleted"})
	}
}

func ListProjectsWithGallery(svc *gallery.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		projects, err := svc.ListByProject(ctx)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, projects)
	}
}
