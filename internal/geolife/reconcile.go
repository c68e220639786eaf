package geolife

import "github.com/jengzang/geolife-backend-go/internal/models"

// ModeReconciler assigns transportation modes to activities of one labelled user
type ModeReconciler struct {
	labels *LabelIndex
}

// NewModeReconciler creates a reconciler over a user's label index
func NewModeReconciler(labels *LabelIndex) *ModeReconciler {
	return &ModeReconciler{labels: labels}
}

// Reconcile sets the activity's mode when rawStart and rawEnd exactly match a
// labelled interval. It reports whether a mode was assigned; an activity that
// already has a mode is left untouched.
func (r *ModeReconciler) Reconcile(a *models.Activity, rawStart, rawEnd string) bool {
	if r == nil || r.labels == nil || a.TransportationMode != nil {
		return false
	}

	mode, ok := r.labels.Lookup(rawStart, rawEnd)
	if !ok {
		return false
	}
	a.TransportationMode = &mode
	return true
}
