package services

import (
	"context"
	"errors"
	"time"

	"github.com/bradfitz/latlong"
	"github.com/shopspring/decimal"

	"github.com/Elisa149/PROPERTY-MANAGEMENT-SYSTEM-sub001/internal/constants"
	"github.com/Elisa149/PROPERTY-MANAGEMENT-SYSTEM-sub001/internal/docstore"
	"github.com/Elisa149/PROPERTY-MANAGEMENT-SYSTEM-sub001/internal/models"
	"github.com/Elisa149/PROPERTY-MANAGEMENT-SYSTEM-sub001/internal/repositories"
	"github.com/Elisa149/PROPERTY-MANAGEMENT-SYSTEM-sub001/internal/utils"
)

var rentEpsilon = decimal.RequireFromString(constants.RentEpsilon)

// rentDiffers compares two currency amounts with a 0.01 tolerance.
func rentDiffers(a, b float64) bool {
	return decimal.NewFromFloat(a).Sub(decimal.NewFromFloat(b)).Abs().GreaterThan(rentEpsilon)
}

func loadPropertyLocation(tz string) *time.Location {
	if tz == "" {
		tz = utils.DefaultTimeZone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return time.UTC
	}
	return loc
}

// propertyZoneName picks the zone for a property: its own timeZone, then a
// lookup from coordinates, then the organization setting.
func propertyZoneName(p *models.Property, org *models.Organization) string {
	if p != nil {
		if p.Location.TimeZone != "" {
			return p.Location.TimeZone
		}
		if p.Location.Latitude != 0 || p.Location.Longitude != 0 {
			if name := latlong.LookupZoneName(p.Location.Latitude, p.Location.Longitude); name != "" {
				return name
			}
		}
	}
	if org != nil && org.Settings.Timezone != "" {
		return org.Settings.Timezone
	}
	return utils.DefaultTimeZone
}

// localToday is the calendar day at the property right now.
func localToday(now time.Time, p *models.Property, org *models.Organization) models.Date {
	return models.DateOf(now, loadPropertyLocation(propertyZoneName(p, org)))
}

// propertyCache memoizes property reads for one maintenance run.
type propertyCache struct {
	repo  repositories.PropertyRepository
	props map[string]*models.Property
	errs  map[string]error
}

func newPropertyCache(repo repositories.PropertyRepository) *propertyCache {
	return &propertyCache{repo: repo, props: map[string]*models.Property{}, errs: map[string]error{}}
}

func (c *propertyCache) get(ctx context.Context, id string) (*models.Property, error) {
	if p, ok := c.props[id]; ok {
		return p, nil
	}
	if err, ok := c.errs[id]; ok {
		return nil, err
	}
	p, err := c.repo.GetByID(ctx, id)
	if err != nil {
		c.errs[id] = err
		return nil, err
	}
	c.props[id] = p
	return p, nil
}

func requireAny(actor models.Actor, scopes ...string) error {
	if actor.CanAny(scopes...) {
		return nil
	}
	return utils.PermissionError(scopes[0])
}

// asAppError passes AppErrors through and wraps anything else as a store error.
func asAppError(err error, op, id string) error {
	var appErr *utils.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	if errors.Is(err, docstore.ErrNotFound) {
		return utils.NotFoundError("document", id)
	}
	return utils.StoreError(op, id, err)
}
