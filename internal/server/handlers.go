package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/bnema/modctl/internal/download"
	"github.com/bnema/modctl/internal/gamebanana"
	"github.com/bnema/modctl/internal/launcher"
	"github.com/bnema/modctl/internal/mods"
	"github.com/bnema/modctl/internal/scanner"
)

func (s *Server) registerRoutes() {
	r := s.router

	r.GET("/health", s.health)
	r.GET("/ws", gin.WrapH(s.deps.Hub))
	if s.deps.Metrics != nil {
		r.GET("/metrics", gin.WrapH(s.deps.Metrics))
	}

	m := r.Group("/mods")
	m.GET("", s.listMods)                    // GET /mods
	m.GET("/:id", s.getMod)                  // GET /mods/:id
	m.DELETE("/:id", s.removeMod)            // DELETE /mods/:id
	m.GET("/:id/terminal", s.terminalOutput) // GET /mods/:id/terminal
	m.POST("/:id/launch", s.launchMod)       // POST /mods/:id/launch
	m.POST("/:id/stop", s.stopMod)           // POST /mods/:id/stop
	m.GET("/:id/engine-mods", s.engineMods)  // GET /mods/:id/engine-mods
	m.POST("/:id/engine-mods/toggle", s.toggleEngineMod)

	r.GET("/catalog", s.searchCatalog)
	r.POST("/downloads", s.startDownload)
	r.DELETE("/downloads/:mod_id", s.cancelDownload)
	r.POST("/rescan", s.rescan)
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":     "ok",
		"mods":       s.deps.State.Mods.Len(),
		"ws_clients": s.deps.Hub.Count(),
	})
}

func (s *Server) listMods(c *gin.Context) {
	c.JSON(http.StatusOK, s.deps.State.Mods.List())
}

func (s *Server) getMod(c *gin.Context) {
	info, err := s.deps.State.Mods.Lookup(c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

func (s *Server) removeMod(c *gin.Context) {
	info, err := s.deps.State.Mods.Lookup(c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	if info.IsRunning() {
		s.fail(c, fmt.Errorf("%w: %s", launcher.ErrAlreadyRunning, info.Name))
		return
	}
	if err := s.deps.State.Mods.Remove(info.ID); err != nil {
		s.fail(c, err)
		return
	}
	s.deps.State.Terminal.Clear(info.ID)
	c.JSON(http.StatusOK, gin.H{"removed": info.ID})
}

func (s *Server) terminalOutput(c *gin.Context) {
	info, err := s.deps.State.Mods.Lookup(c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	output, _ := s.deps.State.Terminal.Get(info.ID)
	c.JSON(http.StatusOK, gin.H{
		"id":      info.ID,
		"running": info.IsRunning(),
		"output":  output,
	})
}

func (s *Server) launchMod(c *gin.Context) {
	info, err := s.deps.Launcher.Launch(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

func (s *Server) stopMod(c *gin.Context) {
	if err := s.deps.Launcher.Stop(c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stopped": c.Param("id")})
}

func (s *Server) engineMods(c *gin.Context) {
	info, err := s.deps.State.Mods.Lookup(c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	resp, err := scanner.EngineMods(info)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// toggleRequest names a sub-mod by its folder name inside the engine mods folder
type toggleRequest struct {
	Name    string `json:"name" binding:"required"`
	Enabled bool   `json:"enabled"`
}

func (s *Server) toggleEngineMod(c *gin.Context) {
	var req toggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	info, err := s.deps.State.Mods.Lookup(c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	folder, err := scanner.EngineModFolder(info, req.Name)
	if err != nil {
		s.fail(c, err)
		return
	}

	result := scanner.SetEnabled(folder, req.Enabled)
	status := http.StatusOK
	if !result.Success {
		status = http.StatusBadRequest
	}
	c.JSON(status, result)
}

func (s *Server) searchCatalog(c *gin.Context) {
	q := gamebanana.Query{
		Search:  c.Query("q"),
		Page:    parseInt(c.Query("page"), 1),
		PerPage: parseInt(c.Query("per_page"), 0),
	}

	resp, err := s.deps.Catalog.Search(c.Request.Context(), q)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

type downloadRequest struct {
	ModID int64 `json:"mod_id" binding:"required"`
}

func (s *Server) startDownload(c *gin.Context) {
	var req downloadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	m, err := s.deps.Catalog.Get(c.Request.Context(), req.ModID)
	if err != nil {
		s.fail(c, err)
		return
	}

	// The download outlives the request
	if err := s.deps.Installer.Start(context.Background(), download.FromCatalog(m)); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"mod_id": m.ID, "name": m.Name, "status": "started"})
}

func (s *Server) cancelDownload(c *gin.Context) {
	modID, err := strconv.ParseInt(c.Param("mod_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid mod_id"})
		return
	}
	if err := s.deps.Installer.Cancel(modID); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"mod_id": modID, "status": "cancelling"})
}

type rejection struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

func (s *Server) rescan(c *gin.Context) {
	result, err := s.deps.Scanner.Sync(s.deps.State.Mods)
	if err != nil {
		s.fail(c, err)
		return
	}

	rejected := make([]rejection, 0, len(result.Rejected))
	for _, r := range result.Rejected {
		rejected = append(rejected, rejection{Path: r.Path, Error: r.Err.Error()})
	}
	removed := result.Removed
	if removed == nil {
		removed = []string{}
	}

	c.JSON(http.StatusOK, gin.H{
		"mods":     len(result.Mods),
		"rejected": rejected,
		"removed":  removed,
	})
}

// fail writes err with the status matching its kind
func (s *Server) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.log.Error("Request failed", "path", c.Request.URL.Path, "error", err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, mods.ErrNotFound),
		errors.Is(err, download.ErrNotActive),
		errors.Is(err, scanner.ErrNoModsFolder),
		errors.Is(err, scanner.ErrNoEngineMod):
		return http.StatusNotFound
	case errors.Is(err, scanner.ErrBadFolder):
		return http.StatusBadRequest
	case errors.Is(err, launcher.ErrAlreadyRunning),
		errors.Is(err, launcher.ErrNotRunning),
		errors.Is(err, download.ErrInProgress):
		return http.StatusConflict
	case errors.Is(err, launcher.ErrNoExecutable):
		return http.StatusUnprocessableEntity
	case errors.Is(err, gamebanana.ErrUnexpectedStatus):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func parseInt(s string, def int) int {
	if strings.TrimSpace(s) == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
