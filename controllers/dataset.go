package controllers

import (
	"errors"
	"fmt"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"net/http"

	"dentascope/dataset"
	"dentascope/models"
)

// GetSummary List every record in the dataset with its box count
func GetSummary(store *dataset.Store) gin.HandlerFunc {
	fn := func(c *gin.Context) {
		summaries, err := store.Summary()
		if err != nil {
			log.Warn(fmt.Sprintf("Error listing dataset summary: %s", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": summaries})
	}
	return fn
}

// GetRecord Return one record exactly as it is stored in the dataset file
func GetRecord(store *dataset.Store) gin.HandlerFunc {
	fn := func(c *gin.Context) {
		file := c.Param("file")
		raw, err := store.Record(file)
		if err != nil {
			if errors.Is(err, dataset.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("No record for %s", file)})
				return
			}
			log.Warn(fmt.Sprintf("Error reading record %s: %s", file, err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Data(http.StatusOK, "application/json", raw)
	}
	return fn
}

type ReplaceObjectsInput struct {
	// A pointer so a deliberately empty list still binds; deleting every
	// box on a record is a legitimate save.
	Objects *[]models.BoundingBox `json:"objects" binding:"required"`
}

// ReplaceObjects Overwrite one record's boxes and rewrite the dataset
func ReplaceObjects(store *dataset.Store) gin.HandlerFunc {
	fn := func(c *gin.Context) {
		file := c.Param("file")

		var input ReplaceObjectsInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		boxes := models.NormalizeBoxes(*input.Objects)
		if err := store.ReplaceObjects(file, boxes); err != nil {
			switch {
			case errors.Is(err, dataset.ErrNotFound):
				c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("No record for %s", file)})
			case errors.Is(err, dataset.ErrBackupRotation):
				log.Warn(fmt.Sprintf("Save of %s aborted: %s", file, err.Error()))
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			default:
				log.Warn(fmt.Sprintf("Error saving objects for %s: %s", file, err.Error()))
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			}
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": fmt.Sprintf("Saved %d objects for %s", len(boxes), file)})
	}
	return fn
}
