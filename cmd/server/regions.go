package main

import (
	"encoding/json"
	"log"
	"net/http"

	mandel "github.com/marben/bandmandel"
	"github.com/marben/bandmandel/server"
)

// region is a landmark in the corner notation clients send back in requests.
type region struct {
	Name       string `json:"name"`
	UpperLeft  string `json:"upper_left"`
	LowerRight string `json:"lower_right"`
}

func landmarks() []region {
	names := mandel.RegionNames()
	out := make([]region, 0, len(names))
	for _, name := range names {
		rect, _ := mandel.LookupRegion(name)
		req := server.NewRequest(rect, 0, 0)
		out = append(out, region{Name: name, UpperLeft: req.UpperLeft, LowerRight: req.LowerRight})
	}
	return out
}

// regionsHandler lists the landmark regions as JSON.
func regionsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(landmarks()); err != nil {
		log.Printf("regions: %v", err)
	}
}
