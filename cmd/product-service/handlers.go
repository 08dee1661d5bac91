package main

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/MikeMC777/mavunohub/internal/apperr"
	"github.com/MikeMC777/mavunohub/internal/auth"
	"github.com/MikeMC777/mavunohub/internal/httpx"
	prod "github.com/MikeMC777/mavunohub/internal/product"
)

func registerRoutes(r gin.IRouter, repo prod.Repository, catalog prod.Versioner, resolver auth.Resolver) {
	g := r.Group("/api/products")
	g.GET("", listProductsHandler(repo))
	g.GET("/:id", getProductHandler(repo))
	g.POST("", httpx.Identity(resolver), httpx.RequireRole(auth.RoleFarmer), createProductHandler(repo))
	g.PUT("/:id", httpx.Identity(resolver), updateProductHandler(repo, catalog))
	g.DELETE("/:id", httpx.Identity(resolver), deleteProductHandler(repo))
}

func mapRepoErr(err error) error {
	switch {
	case errors.Is(err, prod.ErrNotFound):
		return apperr.NotFound("product not found")
	case errors.Is(err, prod.ErrInUse):
		return apperr.InUse(prod.ErrInUse.Error())
	default:
		return err
	}
}

// productID returns the path id, treating a malformed id as an unknown product.
func productID(c *gin.Context) (string, error) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		return "", apperr.NotFound("product not found")
	}
	return id, nil
}

// loadOwned fetches the product and checks the caller is its seller.
func loadOwned(c *gin.Context, repo prod.Repository) (*prod.Product, error) {
	id, err := httpx.CurrentIdentity(c)
	if err != nil {
		return nil, err
	}
	pid, err := productID(c)
	if err != nil {
		return nil, err
	}
	p, err := repo.GetByID(c.Request.Context(), pid)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	if p.SellerID != id.UserID {
		return nil, apperr.Permission("only the seller may modify this product")
	}
	return p, nil
}

// listProductsHandler godoc
// @Summary  List products
// @Tags     products
// @Produce  json
// @Param    q        query string false "search in name/description"
// @Param    category query string false "exact category"
// @Param    seller   query string false "seller id"
// @Param    limit    query int    false "page size (max 100)"
// @Param    offset   query int    false "offset"
// @Success  200 {object} prod.ListResponse
// @Router   /products [get]
func listProductsHandler(repo prod.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
		offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
		if limit <= 0 || limit > 100 {
			limit = 20
		}
		if offset < 0 {
			offset = 0
		}
		q := prod.Query{
			Q:        c.Query("q"),
			Category: c.Query("category"),
			SellerID: c.Query("seller"),
			Limit:    limit,
			Offset:   offset,
		}
		items, err := repo.List(c.Request.Context(), q)
		if err != nil {
			httpx.Error(c, err)
			return
		}
		out := make([]prod.Response, 0, len(items))
		for i := range items {
			out = append(out, items[i].Response())
		}
		c.JSON(http.StatusOK, prod.ListResponse{Q: q.Q, Limit: limit, Offset: offset, Items: out})
	}
}

// getProductHandler godoc
// @Summary  Get a product
// @Tags     products
// @Produce  json
// @Param    id path string true "product id"
// @Success  200 {object} prod.Response
// @Failure  404 {object} httpx.HTTPError
// @Router   /products/{id} [get]
func getProductHandler(repo prod.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		pid, err := productID(c)
		if err != nil {
			httpx.Error(c, err)
			return
		}
		p, err := repo.GetByID(c.Request.Context(), pid)
		if err != nil {
			httpx.Error(c, mapRepoErr(err))
			return
		}
		c.JSON(http.StatusOK, p.Response())
	}
}

// createProductHandler godoc
// @Summary  Create a product (farmers only)
// @Tags     products
// @Accept   json
// @Produce  json
// @Param    X-User-ID header string true "acting user"
// @Param    body body prod.CreateProductRequest true "product"
// @Success  201 {object} prod.Response
// @Failure  400 {object} httpx.HTTPError
// @Failure  403 {object} httpx.HTTPError
// @Router   /products [post]
func createProductHandler(repo prod.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := httpx.CurrentIdentity(c)
		if err != nil {
			httpx.Error(c, err)
			return
		}
		var req prod.CreateProductRequest
		if err := httpx.BindJSON(c, &req); err != nil {
			httpx.Error(c, err)
			return
		}
		if err := req.Validate(); err != nil {
			httpx.Error(c, err)
			return
		}
		p := req.Product(uuid.NewString(), id.UserID)
		if err := repo.Create(c.Request.Context(), p); err != nil {
			httpx.Error(c, err)
			return
		}
		c.JSON(http.StatusCreated, p.Response())
	}
}

// updateProductHandler godoc
// @Summary  Update a product (seller only)
// @Tags     products
// @Accept   json
// @Produce  json
// @Param    X-User-ID header string true "acting user"
// @Param    id   path string true "product id"
// @Param    body body prod.UpdateProductRequest true "fields to change"
// @Success  200 {object} prod.Response
// @Failure  400 {object} httpx.HTTPError
// @Failure  403 {object} httpx.HTTPError
// @Failure  404 {object} httpx.HTTPError
// @Router   /products/{id} [put]
func updateProductHandler(repo prod.Repository, catalog prod.Versioner) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := loadOwned(c, repo)
		if err != nil {
			httpx.Error(c, err)
			return
		}
		var req prod.UpdateProductRequest
		if err := httpx.BindJSON(c, &req); err != nil {
			httpx.Error(c, err)
			return
		}
		if err := req.Validate(); err != nil {
			httpx.Error(c, err)
			return
		}
		oldName := p.Name
		req.Apply(p)
		if err := repo.Update(c.Request.Context(), p); err != nil {
			httpx.Error(c, mapRepoErr(err))
			return
		}
		if p.Name != oldName {
			if err := catalog.Bump(c.Request.Context()); err != nil {
				slog.WarnContext(c.Request.Context(), "catalog version bump", "product_id", p.ID, "err", err)
			}
		}
		c.JSON(http.StatusOK, p.Response())
	}
}

// deleteProductHandler godoc
// @Summary  Delete a product (seller only)
// @Tags     products
// @Param    X-User-ID header string true "acting user"
// @Param    id path string true "product id"
// @Success  204
// @Failure  403 {object} httpx.HTTPError
// @Failure  404 {object} httpx.HTTPError
// @Failure  409 {object} httpx.HTTPError
// @Router   /products/{id} [delete]
func deleteProductHandler(repo prod.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := loadOwned(c, repo)
		if err != nil {
			httpx.Error(c, err)
			return
		}
		ok, err := repo.Delete(c.Request.Context(), p.ID)
		if err != nil {
			httpx.Error(c, mapRepoErr(err))
			return
		}
		if !ok {
			httpx.Error(c, apperr.NotFound("product not found"))
			return
		}
		c.Status(http.StatusNoContent)
	}
}
