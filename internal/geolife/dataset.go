package geolife

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jengzang/geolife-backend-go/internal/models"
)

// Dataset is a Geolife dataset root: labeled_ids.txt next to a Data directory
type Dataset struct {
	Root       string
	DataDir    string
	LabeledIDs map[string]bool
}

// OpenDataset validates the layout under root and loads the labelled users
func OpenDataset(root string) (*Dataset, error) {
	dataDir := filepath.Join(root, "Data")
	info, err := os.Stat(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("failed to open dataset: %s is not a directory", dataDir)
	}

	labeled, err := LoadLabeledIDs(filepath.Join(root, "labeled_ids.txt"))
	if err != nil {
		return nil, err
	}

	return &Dataset{Root: root, DataDir: dataDir, LabeledIDs: labeled}, nil
}

// Walk runs a fresh walker over the dataset
func (d *Dataset) Walk(ctx context.Context, sink Sink) (WalkStats, error) {
	w := NewWalker(d.LabeledIDs)
	err := w.Walk(ctx, d.DataDir, sink)
	return w.Stats(), err
}

// Collector is a Sink that keeps everything in memory
type Collector struct {
	Users       []models.User
	Activities  []models.Activity
	TrackPoints []models.TrackPoint
}

// Activity implements Sink
func (c *Collector) Activity(_ context.Context, activity models.Activity, points []models.TrackPoint) error {
	c.Activities = append(c.Activities, activity)
	c.TrackPoints = append(c.TrackPoints, points...)
	return nil
}

// User implements Sink
func (c *Collector) User(_ context.Context, user models.User) error {
	c.Users = append(c.Users, user)
	return nil
}
