package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"buymore_back_end/internal/cache"
	"buymore_back_end/internal/models"
	"buymore_back_end/internal/orders"
	"buymore_back_end/internal/promotions"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"github.com/shopspring/decimal"
)

// ================== PRODUTOS ==================

type productInput struct {
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"image_url"`
	Unit        string          `json:"unit"`
	Stock       int             `json:"stock"`
	CategoryID  string          `json:"category_id"`
}

func (in productInput) product() (models.Product, error) {
	if !in.Price.IsPositive() {
		return models.Product{}, errors.New("preço deve ser maior que zero")
	}
	if in.Stock < 0 {
		return models.Product{}, errors.New("estoque não pode ser negativo")
	}
	p := models.Product{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Price:       in.Price,
		ImageURL:    in.ImageURL,
		Unit:        in.Unit,
		Stock:       in.Stock,
	}
	if p.Unit == "" {
		p.Unit = models.DefaultUnit
	}
	if in.CategoryID != "" {
		id, err := gocql.ParseUUID(in.CategoryID)
		if err != nil {
			return models.Product{}, errors.New("category_id inválido")
		}
		p.CategoryID = id
	}
	return p, nil
}

func (a *API) AdminListProducts(c *gin.Context) {
	list, err := a.Store.ListProducts(c.Request.Context())
	if err != nil {
		storeError(c, "Produto", err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (a *API) CreateProduct(c *gin.Context) {
	a.saveProduct(c, gocql.UUID{}, http.StatusCreated)
}

func (a *API) UpdateProduct(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	a.saveProduct(c, id, http.StatusOK)
}

func (a *API) saveProduct(c *gin.Context, id gocql.UUID, status int) {
	var in productInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p, err := in.product()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p.ID = id

	ctx := c.Request.Context()
	if err := a.Store.SaveProduct(ctx, &p); err != nil {
		storeError(c, "Produto", err)
		return
	}
	a.CatalogCache.Invalidate(ctx, cache.KeyProducts)
	a.Search.IndexProduct(ctx, p)
	c.JSON(status, p)
}

func (a *API) DeleteProduct(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if err := a.Store.DeleteProduct(ctx, id); err != nil {
		storeError(c, "Produto", err)
		return
	}
	a.CatalogCache.Invalidate(ctx, cache.KeyProducts)
	a.Search.RemoveProduct(ctx, id)
	c.JSON(http.StatusOK, gin.H{"message": "Produto excluído"})
}

// UploadProductImage recebe o campo "image" e devolve a URL pública no MinIO.
func (a *API) UploadProductImage(c *gin.Context) {
	if a.Images == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Upload de imagens desativado"})
		return
	}
	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Envie a imagem no campo 'image'"})
		return
	}
	url, err := a.Images.UploadProductImage(c.Request.Context(), file)
	if err != nil {
		log.Printf("❌ Erro no upload de imagem: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	log.Println("📤 Imagem enviada:", url)
	c.JSON(http.StatusCreated, gin.H{"image_url": url})
}

// ================== CATEGORIAS ==================

type categoryInput struct {
	Name string `json:"name" binding:"required"`
	Slug string `json:"slug"`
	Type string `json:"type"`
}

func (a *API) AdminListCategories(c *gin.Context) {
	list, err := a.Store.ListCategories(c.Request.Context())
	if err != nil {
		storeError(c, "Categoria", err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (a *API) CreateCategory(c *gin.Context) {
	a.saveCategory(c, gocql.UUID{}, http.StatusCreated)
}

func (a *API) UpdateCategory(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	a.saveCategory(c, id, http.StatusOK)
}

func (a *API) saveCategory(c *gin.Context, id gocql.UUID, status int) {
	var in categoryInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cat := models.Category{ID: id, Name: strings.TrimSpace(in.Name), Slug: strings.TrimSpace(in.Slug)}
	if cat.Slug == "" {
		cat.Slug = models.Slugify(cat.Name)
	}
	if in.Type != "" {
		t, ok := models.ParseCategoryType(in.Type)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "tipo deve ser 'supermarket' ou 'snacks'"})
			return
		}
		cat.Type = t
	} else {
		cat.Type = cat.EffectiveType()
	}

	ctx := c.Request.Context()
	if err := a.Store.SaveCategory(ctx, &cat); err != nil {
		storeError(c, "Categoria", err)
		return
	}
	a.CatalogCache.Invalidate(ctx, cache.KeyCategories)
	c.JSON(status, cat)
}

func (a *API) DeleteCategory(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if err := a.Store.DeleteCategory(ctx, id); err != nil {
		storeError(c, "Categoria", err)
		return
	}
	a.CatalogCache.Invalidate(ctx, cache.KeyCategories)
	c.JSON(http.StatusOK, gin.H{"message": "Categoria excluída"})
}

// ================== PROMOÇÕES ==================

func (a *API) AdminListPromotions(c *gin.Context) {
	list, err := a.Store.ListPromotions(c.Request.Context())
	if err != nil {
		storeError(c, "Promoção", err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (a *API) CreatePromotion(c *gin.Context) {
	a.savePromotion(c, gocql.UUID{}, http.StatusCreated)
}

func (a *API) UpdatePromotion(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	a.savePromotion(c, id, http.StatusOK)
}

func (a *API) savePromotion(c *gin.Context, id gocql.UUID, status int) {
	var p models.Promotion
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p.ID = id
	if err := promotions.Validate(p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	if b, ok := promotions.Bundle(p); ok {
		if _, err := a.Store.GetProduct(ctx, b.ProductID); err != nil {
			storeError(c, "Produto da promoção", err)
			return
		}
	}
	if err := a.Store.SavePromotion(ctx, &p); err != nil {
		storeError(c, "Promoção", err)
		return
	}
	a.CatalogCache.Invalidate(ctx, cache.KeyPromotions)
	c.JSON(status, p)
}

func (a *API) DeletePromotion(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if err := a.Store.DeletePromotion(ctx, id); err != nil {
		storeError(c, "Promoção", err)
		return
	}
	a.CatalogCache.Invalidate(ctx, cache.KeyPromotions)
	c.JSON(http.StatusOK, gin.H{"message": "Promoção excluída"})
}

// ================== USUÁRIOS ==================

func (a *API) AdminListUsers(c *gin.Context) {
	list, err := a.Store.ListProfiles(c.Request.Context())
	if err != nil {
		storeError(c, "Usuário", err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// SetUserApproval liga ou desliga o acesso à loja.
func (a *API) SetUserApproval(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var input struct {
		Approved *bool `json:"approved" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Informe 'approved'"})
		return
	}
	if err := a.Store.SetApproved(c.Request.Context(), id, *input.Approved); err != nil {
		storeError(c, "Usuário", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "approved": *input.Approved})
}

// ================== PEDIDOS ==================

func (a *API) AdminListOrders(c *gin.Context) {
	list, err := a.Orders.List(c.Request.Context())
	if err != nil {
		storeError(c, "Pedido", err)
		return
	}
	if list == nil {
		list = []orders.View{}
	}
	c.JSON(http.StatusOK, list)
}

func (a *API) UpdateOrderStatus(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var input struct {
		Status models.OrderStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	err := a.Orders.UpdateStatus(c.Request.Context(), id, input.Status)
	if errors.Is(err, orders.ErrInvalidStatus) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		storeError(c, "Pedido", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "status": input.Status, "presentation": orders.Present(input.Status)})
}
