package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"storefront/internal/domain"
	productsvc "storefront/internal/service/product"
	"github.com/gin-gonic/gin"
)

func createProductHandler(svc ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in productsvc.Input
		if err := c.ShouldBindJSON(&in); err != nil {
			respondError(c, http.StatusBadRequest, "invalid request body")
			return
		}
		p, err := svc.Create(c.Request.Context(), in)
		if err != nil {
			if errors.Is(err, domain.ErrAlreadyExists) {
				respondError(c, http.StatusConflict, "product already exists")
				return
			}
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		respondOK(c, http.StatusCreated, "product created successfully", gin.H{"product": p})
	}
}

func updateProductHandler(svc ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in productsvc.Input
		if err := c.ShouldBindJSON(&in); err != nil {
			respondError(c, http.StatusBadRequest, "invalid request body")
			return
		}
		p, err := svc.Update(c.Request.Context(), c.Param("id"), in)
		if err != nil {
			respondRepoError(c, err, "product not found", "product already exists")
			return
		}
		respondOK(c, http.StatusOK, "product updated successfully", gin.H{"product": p})
	}
}

func deleteProductHandler(svc ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
			respondRepoError(c, err, "product not found", "conflict")
			return
		}
		respondOK(c, http.StatusOK, "product deleted successfully", nil)
	}
}

func listProductsHandler(svc ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := svc.List(c.Request.Context())
		if err != nil {
			respondError(c, http.StatusInternalServerError, "error in getting products")
			return
		}
		if list == nil {
			list = []domain.Product{}
		}
		respondOK(c, http.StatusOK, "all products", gin.H{
			"totalCount": len(list),
			"products":   list,
		})
	}
}

func getProductHandler(svc ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := svc.GetBySlug(c.Request.Context(), c.Param("slug"))
		if err != nil {
			respondRepoError(c, err, "product not found", "conflict")
			return
		}
		respondOK(c, http.StatusOK, "received product", gin.H{"product": p})
	}
}

// filterRequest mirrors the storefront's filter widget payload: checked
// category ids plus a [min, max] price range in cents.
type filterRequest struct {
	Checked []string `json:"checked"`
	Radio   []int64  `json:"radio"`
}

func filterProductsHandler(svc ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in filterRequest
		if err := c.ShouldBindJSON(&in); err != nil {
			respondError(c, http.StatusBadRequest, "invalid request body")
			return
		}
		filter := domain.ProductFilter{CategoryIDs: in.Checked}
		if len(in.Radio) == 2 {
			filter.MinPriceCents = &in.Radio[0]
			filter.MaxPriceCents = &in.Radio[1]
		}
		list, err := svc.Filter(c.Request.Context(), filter)
		if err != nil {
			respondError(c, http.StatusInternalServerError, "error while filtering products")
			return
		}
		if list == nil {
			list = []domain.Product{}
		}
		respondOK(c, http.StatusOK, "", gin.H{"products": list})
	}
}

func productCountHandler(svc ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		total, err := svc.Count(c.Request.Context())
		if err != nil {
			respondError(c, http.StatusInternalServerError, "error in product count")
			return
		}
		respondOK(c, http.StatusOK, "", gin.H{"total": total})
	}
}

func productListHandler(svc ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, err := strconv.Atoi(c.Param("page"))
		if err != nil || page < 1 {
			respondError(c, http.StatusBadRequest, "invalid page number")
			return
		}
		list, err := svc.ListPage(c.Request.Context(), page)
		if err != nil {
			respondError(c, http.StatusInternalServerError, "error in per page")
			return
		}
		if list == nil {
			list = []domain.Product{}
		}
		respondOK(c, http.StatusOK, "", gin.H{"products": list})
	}
}

func searchProductsHandler(svc ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := svc.Search(c.Request.Context(), c.Param("keyword"))
		if err != nil {
			respondError(c, http.StatusBadRequest, "error in search product")
			return
		}
		if list == nil {
			list = []domain.Product{}
		}
		c.JSON(http.StatusOK, list)
	}
}

func relatedProductsHandler(svc ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := svc.Related(c.Request.Context(), c.Param("pid"), c.Param("cid"))
		if err != nil {
			respondError(c, http.StatusInternalServerError, "error while getting related products")
			return
		}
		if list == nil {
			list = []domain.Product{}
		}
		respondOK(c, http.StatusOK, "", gin.H{"products": list})
	}
}

func productsByCategoryHandler(svc ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		cat, list, err := svc.ByCategory(c.Request.Context(), c.Param("slug"))
		if err != nil {
			respondRepoError(c, err, "category not found", "conflict")
			return
		}
		if list == nil {
			list = []domain.Product{}
		}
		respondOK(c, http.StatusOK, "", gin.H{"category": cat, "products": list})
	}
}
