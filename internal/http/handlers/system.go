package handlers

import (
	"net/http"

	intconfig "jamii/internal/config"
	intdb "jamii/internal/db"

	"github.com/gin-gonic/gin"
)

func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "jamii backend running"})
}

func DBCheck(c *gin.Context) {
	if intconfig.DB == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database not connected"})
		return
	}
	var count int
	if err := intconfig.DB.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database query failed: " + err.Error()})
		return
	}

	tables := gin.H{}
	for _, t := range []string{"communities", "units", "residents", "levies", "mpesa_payments"} {
		tables[t] = intdb.HasTable(intconfig.DB, t)
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "database connection OK",
		"users_in_db": count,
		"tables":      tables,
	})
}
