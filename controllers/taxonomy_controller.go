package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/vlogsite/blogify/models"
	"github.com/vlogsite/blogify/utils"
)

// TaxonomyController manages the curated category and tag vocabularies.
// Reads are public; writes require the blogger role.
type TaxonomyController struct {
	db *gorm.DB
}

// NewTaxonomyController creates a new TaxonomyController instance.
func NewTaxonomyController(db *gorm.DB) *TaxonomyController {
	return &TaxonomyController{db: db}
}

type taxonomyRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=64"`
	Description string `json:"description"`
}

// ListCategories returns every category.
func (t *TaxonomyController) ListCategories(ctx *gin.Context) {
	var categories []models.Category
	if err := t.db.Order("name ASC").Find(&categories).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50060, "failed to list categories")
		return
	}
	utils.Success(ctx, gin.H{"categories": categories})
}

// CreateCategory adds a category with a globally unique name.
func (t *TaxonomyController) CreateCategory(ctx *gin.Context) {
	if !isBlogger(ctx) {
		utils.Error(ctx, http.StatusForbidden, 40330, "access denied")
		return
	}
	var req taxonomyRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40040, "name is required")
		return
	}
	name := strings.TrimSpace(req.Name)

	var existing models.Category
	if err := t.db.Where("name = ?", name).First(&existing).Error; err == nil {
		utils.Error(ctx, http.StatusBadRequest, 40041, "category name already exists")
		return
	}

	category := models.Category{Name: name, Description: req.Description}
	if err := t.db.Create(&category).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50061, "failed to create category")
		return
	}
	utils.Created(ctx, gin.H{"category": category})
}

// UpdateCategory renames or re-describes a category.
func (t *TaxonomyController) UpdateCategory(ctx *gin.Context) {
	if !isBlogger(ctx) {
		utils.Error(ctx, http.StatusForbidden, 40330, "access denied")
		return
	}
	var req taxonomyRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40040, "name is required")
		return
	}

	var category models.Category
	if err := t.db.First(&category, ctx.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40430, "category not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50062, "failed to load category")
		return
	}

	category.Name = strings.TrimSpace(req.Name)
	category.Description = req.Description
	if err := t.db.Save(&category).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50063, "failed to update category")
		return
	}
	utils.Success(ctx, gin.H{"category": category})
}

// DeleteCategory removes a category; posts referencing it merely lose
// the association.
func (t *TaxonomyController) DeleteCategory(ctx *gin.Context) {
	if !isBlogger(ctx) {
		utils.Error(ctx, http.StatusForbidden, 40330, "access denied")
		return
	}
	var category models.Category
	if err := t.db.First(&category, ctx.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40430, "category not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50064, "failed to load category")
		return
	}
	err := t.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM post_categories WHERE category_id = ?", category.ID).Error; err != nil {
			return err
		}
		return tx.Delete(&category).Error
	})
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50065, "failed to delete category")
		return
	}
	utils.Success(ctx, gin.H{"message": "category deleted"})
}

// ListTags returns every curated tag.
func (t *TaxonomyController) ListTags(ctx *gin.Context) {
	var tags []models.Tag
	if err := t.db.Order("name ASC").Find(&tags).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50066, "failed to list tags")
		return
	}
	utils.Success(ctx, gin.H{"tags": tags})
}

// CreateTag adds a curated tag with a globally unique name.
func (t *TaxonomyController) CreateTag(ctx *gin.Context) {
	if !isBlogger(ctx) {
		utils.Error(ctx, http.StatusForbidden, 40330, "access denied")
		return
	}
	var req taxonomyRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40040, "name is required")
		return
	}
	name := strings.TrimSpace(req.Name)

	var existing models.Tag
	if err := t.db.Where("name = ?", name).First(&existing).Error; err == nil {
		utils.Error(ctx, http.StatusBadRequest, 40042, "tag name already exists")
		return
	}

	tag := models.Tag{Name: name, Description: req.Description}
	if err := t.db.Create(&tag).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50067, "failed to create tag")
		return
	}
	utils.Created(ctx, gin.H{"tag": tag})
}

// UpdateTag renames or re-describes a tag.
func (t *TaxonomyController) UpdateTag(ctx *gin.Context) {
	if !isBlogger(ctx) {
		utils.Error(ctx, http.StatusForbidden, 40330, "access denied")
		return
	}
	var req taxonomyRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40040, "name is required")
		return
	}

	var tag models.Tag
	if err := t.db.First(&tag, ctx.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40431, "tag not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50068, "failed to load tag")
		return
	}

	tag.Name = strings.TrimSpace(req.Name)
	tag.Description = req.Description
	if err := t.db.Save(&tag).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50069, "failed to update tag")
		return
	}
	utils.Success(ctx, gin.H{"tag": tag})
}

// DeleteTag removes a curated tag.
func (t *TaxonomyController) DeleteTag(ctx *gin.Context) {
	if !isBlogger(ctx) {
		utils.Error(ctx, http.StatusForbidden, 40330, "access denied")
		return
	}
	var tag models.Tag
	if err := t.db.First(&tag, ctx.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40431, "tag not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50070, "failed to load tag")
		return
	}
	if err := t.db.Delete(&tag).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50071, "failed to delete tag")
		return
	}
	utils.Success(ctx, gin.H{"message": "tag deleted"})
}
