// Package devserver is an in-process implementation of the portal's wire
// contract. It exists so the client can run and be tested without the real
// backend: documents live in memory, users are seeded, tokens are real JWTs.
package devserver

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/edushare-client/internal/models"
	"github.com/noah-isme/edushare-client/pkg/logger"
	"github.com/noah-isme/edushare-client/pkg/middleware/requestid"
)

// Config configures token issuance.
type Config struct {
	JWTSecret string
	TokenTTL  time.Duration
}

func (c Config) withDefaults() Config {
	if c.JWTSecret == "" {
		c.JWTSecret = "dev_secret"
	}
	if c.TokenTTL <= 0 {
		c.TokenTTL = 24 * time.Hour
	}
	return c
}

type account struct {
	profile      models.UserProfile
	passwordHash []byte
}

type storedDocument struct {
	doc  models.Document
	file []byte
}

// Server holds the in-memory corpus and user set.
type Server struct {
	config  Config
	logger  *zap.Logger
	metrics *Metrics

	mu       sync.Mutex
	accounts map[string]*account
	docs     map[string]*storedDocument
}

type tokenClaims struct {
	Username string          `json:"username"`
	Role     models.UserRole `json:"role"`
	jwt.RegisteredClaims
}

// New constructs a Server seeded with one admin and one regular user
// (admin/admin123, etudiant/etudiant123).
func New(config Config, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		config:   config.withDefaults(),
		logger:   log,
		metrics:  NewMetrics(),
		accounts: make(map[string]*account),
		docs:     make(map[string]*storedDocument),
	}
	s.seedAccount("admin", "admin123", models.RoleAdmin)
	s.seedAccount("etudiant", "etudiant123", models.RoleUser)
	return s
}

func (s *Server) seedAccount(username, password string, role models.UserRole) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		panic(fmt.Sprintf("seed account %s: %v", username, err))
	}
	s.accounts[username] = &account{
		profile: models.UserProfile{
			ID:       uuid.NewString(),
			Username: username,
			Role:     role,
			Email:    username + "@edushare.local",
		},
		passwordHash: hash,
	}
}

// SeedDocument inserts a document into the corpus, returning the stored
// projection. Used by tests and dev fixtures.
func (s *Server) SeedDocument(doc models.Document, file []byte) models.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}
	s.docs[doc.ID] = &storedDocument{doc: doc, file: file}
	return doc
}

// Account returns the seeded profile for a username, for test assertions.
func (s *Server) Account(username string) (models.UserProfile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[username]
	if !ok {
		return models.UserProfile{}, false
	}
	return acc.profile, true
}

// Router builds the gin engine exposing the full REST surface.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestid.Middleware())
	r.Use(logger.GinMiddleware(s.logger))
	r.Use(s.metrics.Middleware())

	r.GET("/metrics", s.metrics.Handler())

	api := r.Group("/api")
	api.GET("/test", s.handleTest)
	api.POST("/auth/login", s.handleLogin)
	api.GET("/documents/download/:id", s.handleDownload)

	authed := api.Group("")
	authed.Use(s.requireBearer())
	authed.GET("/documents", s.handleListDocuments)
	authed.GET("/documents/:id", s.handleGetDocument)
	authed.POST("/documents", s.handleCreateDocument)
	authed.DELETE("/documents/:id", s.handleDeleteDocument)
	authed.GET("/users/profile", s.handleProfile)
	authed.GET("/users", s.handleListUsers)

	return r
}

func (s *Server) handleTest(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message":   "API reachable",
		"origin":    c.Request.Host,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleLogin(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "username and password are required"})
		return
	}

	s.mu.Lock()
	acc, ok := s.accounts[req.Username]
	s.mu.Unlock()

	// Unknown user and wrong password answer identically so the response
	// does not reveal which usernames exist.
	if !ok || bcrypt.CompareHashAndPassword(acc.passwordHash, []byte(req.Password)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "invalid username or password"})
		return
	}

	token, err := s.issueToken(acc.profile)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to issue token"})
		return
	}

	c.JSON(http.StatusOK, models.LoginResponse{Token: token, User: acc.profile})
}

func (s *Server) issueToken(profile models.UserProfile) (string, error) {
	now := time.Now().UTC()
	claims := tokenClaims{
		Username: profile.Username,
		Role:     profile.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   profile.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.config.TokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.JWTSecret))
}

func (s *Server) verifyToken(raw string) (*models.UserProfile, error) {
	claims := &tokenClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(s.config.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return &models.UserProfile{
		ID:       claims.Subject,
		Username: claims.Username,
		Role:     claims.Role,
	}, nil
}

const contextUserKey = "currentUser"

func (s *Server) requireBearer() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		parts := strings.SplitN(header, " ", 2)
		if header == "" || len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "missing bearer token"})
			return
		}
		profile, err := s.verifyToken(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "session expired or invalid"})
			return
		}
		c.Set(contextUserKey, profile)
		c.Next()
	}
}

func currentUser(c *gin.Context) *models.UserProfile {
	if v, ok := c.Get(contextUserKey); ok {
		if profile, ok := v.(*models.UserProfile); ok {
			return profile
		}
	}
	return nil
}

func (s *Server) handleListDocuments(c *gin.Context) {
	docType := c.Query("type")
	subject := c.Query("subject")
	search := strings.ToLower(c.Query("search"))

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Document, 0, len(s.docs))
	for _, stored := range s.docs {
		doc := stored.doc
		if docType != "" && string(doc.Type) != docType {
			continue
		}
		if subject != "" && doc.Subject != subject {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(doc.Title), search) &&
			!strings.Contains(strings.ToLower(doc.Description), search) {
			continue
		}
		out = append(out, doc)
	}

	c.JSON(http.StatusOK, gin.H{"data": out})
}

func (s *Server) handleGetDocument(c *gin.Context) {
	s.mu.Lock()
	stored, ok := s.docs[c.Param("id")]
	s.mu.Unlock()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": "document not found"})
		return
	}
	c.JSON(http.StatusOK, stored.doc)
}

func (s *Server) handleCreateDocument(c *gin.Context) {
	title := c.PostForm("title")
	docType := c.PostForm("type")
	subject := c.PostForm("subject")
	description := c.PostForm("description")

	if title == "" || docType == "" || subject == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "title, type and subject are required"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "a file is required"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "unreadable file"})
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "unreadable file"})
		return
	}

	user := currentUser(c)
	doc := models.Document{
		ID:          uuid.NewString(),
		Title:       title,
		Type:        models.DocumentType(docType),
		Subject:     subject,
		Description: description,
		FileName:    fileHeader.Filename,
		CreatedAt:   time.Now().UTC(),
		UploadedBy:  &models.Uploader{ID: user.ID, Username: user.Username},
	}

	s.mu.Lock()
	s.docs[doc.ID] = &storedDocument{doc: doc, file: data}
	s.mu.Unlock()

	c.JSON(http.StatusCreated, doc)
}

func (s *Server) handleDeleteDocument(c *gin.Context) {
	user := currentUser(c)

	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.docs[c.Param("id")]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": "document not found"})
		return
	}

	owner := stored.doc.UploadedBy
	if user.Role != models.RoleAdmin && (owner == nil || owner.ID != user.ID) {
		c.JSON(http.StatusForbidden, gin.H{"message": "not allowed to delete this document"})
		return
	}

	delete(s.docs, stored.doc.ID)
	c.JSON(http.StatusOK, gin.H{"message": "document deleted"})
}

func (s *Server) handleDownload(c *gin.Context) {
	raw := c.Query("token")
	if raw == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "missing token"})
		return
	}
	if _, err := s.verifyToken(raw); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "session expired or invalid"})
		return
	}

	s.mu.Lock()
	stored, ok := s.docs[c.Param("id")]
	if ok {
		stored.doc.Downloads++
	}
	s.mu.Unlock()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": "document not found"})
		return
	}

	name := stored.doc.FileName
	if name == "" {
		name = stored.doc.Title
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, "application/octet-stream", stored.file)
}

func (s *Server) handleProfile(c *gin.Context) {
	user := currentUser(c)

	s.mu.Lock()
	acc, ok := s.accounts[user.Username]
	s.mu.Unlock()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": "user not found"})
		return
	}
	c.JSON(http.StatusOK, acc.profile)
}

func (s *Server) handleListUsers(c *gin.Context) {
	user := currentUser(c)
	if user.Role != models.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"message": "admin role required"})
		return
	}

	s.mu.Lock()
	out := make([]models.UserProfile, 0, len(s.accounts))
	for _, acc := range s.accounts {
		out = append(out, acc.profile)
	}
	s.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{"data": out})
}
