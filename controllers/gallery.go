package controllers

import (
	"fmt"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"net/http"
	"os"
	"strconv"

	"dentascope/gallery"
	"dentascope/utils"
)

// GetImage Serve a radiograph from the image directory
func GetImage(thumbs *gallery.Thumbnailer) gin.HandlerFunc {
	fn := func(c *gin.Context) {
		file := c.Param("file")
		path, err := thumbs.ImagePath(file)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if _, err := os.Stat(path); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("No image %s", file)})
			return
		}
		c.File(path)
	}
	return fn
}

// GetThumbnail Serve a downscaled JPEG of a radiograph, cached in memory
func GetThumbnail(thumbs *gallery.Thumbnailer, cache *gallery.Cache, config *utils.Config) gin.HandlerFunc {
	fn := func(c *gin.Context) {
		file := c.Param("file")
		if _, err := thumbs.ImagePath(file); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		size := c.DefaultQuery("size", strconv.Itoa(config.Thumbnail.Size))
		sizeInt, err := strconv.ParseInt(size, 10, 64)
		if err != nil || sizeInt <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Incorrect value for size."})
			return
		}
		if int(sizeInt) > config.Thumbnail.MaxSize {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Too large thumbnail requested."})
			return
		}

		key := gallery.Key(file, int(sizeInt))
		if data, err := cache.Read(key); err == nil {
			c.Data(http.StatusOK, "image/jpeg", data)
			return
		}

		data, err := thumbs.Thumbnail(file, int(sizeInt))
		if err != nil {
			if os.IsNotExist(err) {
				c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("No image %s", file)})
				return
			}
			log.Warn(fmt.Sprintf("Error building thumbnail for %s: %s", file, err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		cache.Update(key, data)
		c.Data(http.StatusOK, "image/jpeg", data)
	}
	return fn
}
