// Command noumenon-inspect is a read-only HTTP debug server over a loaded
// World: a diagnostic convenience for inspection, not machine-parsed
// output. It never mutates the loaded Mind graph.
package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/aigan/noumenon/core/noumenon"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var file, addr string
	cmd := &cobra.Command{
		Use:   "noumenon-inspect",
		Short: "Read-only HTTP debug server over a saved Mind graph",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("read saved file: %w", err)
			}
			w := noumenon.NewWorld()
			mind, err := w.Load(string(data))
			if err != nil {
				return fmt.Errorf("load saved mind: %w", err)
			}
			h := &handler{world: w, mind: mind}
			gin.SetMode(gin.ReleaseMode)
			r := gin.Default()
			h.registerRoutes(r)
			return r.Run(addr)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "path to a saved mind JSON document (required)")
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

// handler holds the loaded World; every endpoint only reads from it.
type handler struct {
	world *noumenon.World
	mind  *noumenon.Mind
}

func (h *handler) registerRoutes(r *gin.Engine) {
	r.GET("/stats", h.getStats)
	r.GET("/minds/:id/states", h.getMindStates)
	r.GET("/recall", h.getRecall)
}

// getStats reports registry counts for the loaded World.
func (h *handler) getStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.world.Stats())
}

// getMindStates lists every State of the named Mind, by Sysdesig.
func (h *handler) getMindStates(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid mind id"})
		return
	}
	mind, ok := h.world.MindByID(noumenon.ID(id))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "mind not found"})
		return
	}
	states := mind.States()
	out := make([]gin.H, 0, len(states))
	for _, s := range states {
		out = append(out, gin.H{
			"id":        s.ID(),
			"sysdesig":  s.Sysdesig(),
			"tt":        s.TT(),
			"vt":        s.VT(),
			"locked":    s.Locked(),
			"certainty": s.Certainty(),
		})
	}
	c.JSON(http.StatusOK, gin.H{"mind": mind.Sysdesig(), "states": out})
}

// getRecall runs Mind.RecallBySubject over the loaded Mind's own origin
// State, mirroring the `noumenon recall` CLI command's semantics.
func (h *handler) getRecall(c *gin.Context) {
	subjectLabel := c.Query("subject")
	if subjectLabel == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "subject query param required"})
		return
	}
	subject, ok := h.world.SubjectByLabel(subjectLabel)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown subject"})
		return
	}
	vt, _ := strconv.ParseInt(c.Query("vt"), 10, 64)
	var requestTraits []string
	if raw := c.Query("traits"); raw != "" {
		requestTraits = strings.Split(raw, ",")
	}
	origin, ok := h.mind.Origin().(*noumenon.State)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "mind has no State origin"})
		return
	}
	notion, err := h.mind.RecallBySubject(origin, subject, vt, requestTraits)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	traits := map[string]interface{}{}
	for path, v := range notion.Traits {
		enc, err := noumenon.EncodeValueJSON(v)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		var decoded interface{}
		if err := json.Unmarshal(enc, &decoded); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		traits[path] = decoded
	}
	c.JSON(http.StatusOK, gin.H{"subject": subject.Sysdesig(), "vt": vt, "traits": traits})
}
