package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type categoryRequest struct {
	Name string `json:"name" binding:"required"`
}

func createCategoryHandler(svc CategoryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in categoryRequest
		if err := c.ShouldBindJSON(&in); err != nil {
			respondError(c, http.StatusBadRequest, "name is required")
			return
		}
		cat, err := svc.Create(c.Request.Context(), in.Name)
		if err != nil {
			respondRepoError(c, err, "category not found", "category already exists")
			return
		}
		respondOK(c, http.StatusCreated, "new category created", gin.H{"category": cat})
	}
}

func updateCategoryHandler(svc CategoryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in categoryRequest
		if err := c.ShouldBindJSON(&in); err != nil {
			respondError(c, http.StatusBadRequest, "name is required")
			return
		}
		cat, err := svc.Update(c.Request.Context(), c.Param("id"), in.Name)
		if err != nil {
			respondRepoError(c, err, "category not found", "category already exists")
			return
		}
		respondOK(c, http.StatusOK, "category updated successfully", gin.H{"category": cat})
	}
}

func listCategoriesHandler(svc CategoryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := svc.List(c.Request.Context())
		if err != nil {
			respondError(c, http.StatusInternalServerError, "error while getting all categories")
			return
		}
		respondOK(c, http.StatusOK, "all categories list", gin.H{"category": list})
	}
}

func getCategoryHandler(svc CategoryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		cat, err := svc.GetBySlug(c.Request.Context(), c.Param("slug"))
		if err != nil {
			respondRepoError(c, err, "category not found", "conflict")
			return
		}
		respondOK(c, http.StatusOK, "get single category successfully", gin.H{"category": cat})
	}
}

func deleteCategoryHandler(svc CategoryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
			respondRepoError(c, err, "category not found", "conflict")
			return
		}
		respondOK(c, http.StatusOK, "category deleted successfully", nil)
	}
}
