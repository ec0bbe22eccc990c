// ABOUTME: Startup crash recovery for interrupted recordings
// ABOUTME: Offers a stored snapshot to the user and resumes or discards it

package tracking

import (
	"context"
	"errors"
	"fmt"

	"github.com/harper/wander/internal/log"
	"github.com/harper/wander/internal/models"
	"github.com/harper/wander/internal/recovery"
)

// PendingRecovery returns the stored snapshot, if any, without acting on it.
// Corrupt snapshots are deleted and reported as absent.
func (e *Engine) PendingRecovery(ctx context.Context) (*models.RecoverySnapshot, error) {
	if e.slot == nil {
		return nil, nil
	}
	snap, err := e.slot.Load(ctx)
	switch {
	case errors.Is(err, recovery.ErrNoSnapshot):
		return nil, nil
	case errors.Is(err, recovery.ErrCorrupt):
		e.log.Warn("discarding corrupt recovery snapshot", log.ErrorField(err))
		e.discard(ctx)
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("load recovery snapshot: %w", err)
	}
	return snap, nil
}

// OfferRecovery checks for an interrupted recording and asks confirm whether
// to resume it. Accepting resumes recording; declining (or a nil confirm)
// deletes the snapshot. It reports whether a recording was resumed.
func (e *Engine) OfferRecovery(ctx context.Context, confirm Confirmer) (bool, error) {
	snap, err := e.PendingRecovery(ctx)
	if err != nil || snap == nil {
		return false, err
	}

	if confirm == nil || !confirm.ConfirmResume(snap) {
		e.log.Info("recovery declined", log.Int("points", len(snap.Path)))
		e.discard(ctx)
		return false, nil
	}

	if err := e.Resume(ctx, snap); err != nil {
		return false, err
	}
	return true, nil
}

// Resume restores a session from snap, redraws its path once and continues recording.
func (e *Engine) Resume(ctx context.Context, snap *models.RecoverySnapshot) error {
	e.lifecycle.Lock()
	defer e.lifecycle.Unlock()
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session.Active {
		return ErrRecording
	}

	id := snap.SessionID
	if id == "" {
		id = models.NewSessionID()
	}
	e.session = Session{
		ID:        id,
		Active:    true,
		Resumed:   true,
		Path:      append([]models.TrackPoint(nil), snap.Path...),
		StartTime: snap.StartTime,
		Distance:  snap.Distance,
	}

	e.renderer.ClearTrace()
	if len(e.session.Path) > 0 {
		e.renderer.DrawPath(append([]models.TrackPoint(nil), e.session.Path...))
	}

	if err := e.beginLocked(ctx); err != nil {
		e.session.Active = false
		return err
	}
	e.log.Info("recording resumed",
		log.String("session", id),
		log.Int("points", len(e.session.Path)))
	return nil
}

func (e *Engine) discard(ctx context.Context) {
	if err := e.slot.Delete(ctx); err != nil {
		e.log.Warn("could not delete recovery snapshot", log.ErrorField(err))
	}
}
