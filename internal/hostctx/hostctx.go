// Package hostctx computes host-match tiers and weights for reference
// records against a user-supplied host.
package hostctx

import (
	"context"
	"errors"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/entolab/isympred/internal/hoststore"
	"github.com/entolab/isympred/internal/model"
)

// Host-match weight table. Part of the documented contract; never varies
// per run.
var matchWeights = map[model.HostMatchLevel]float64{
	model.HostMatchSpecies:  1.5,
	model.HostMatchGenus:    1.3,
	model.HostMatchFamily:   1.2,
	model.HostMatchOrder:    1.1,
	model.HostMatchGeneral:  1.0,
	model.HostMatchMismatch: 0.8,
}

// WeightFor returns the score multiplier for a host-match level.
func WeightFor(level model.HostMatchLevel) float64 {
	return matchWeights[level]
}

// Weigher scores records against a resolved host profile. A Weigher with a
// nil profile is valid and weighs every record as General.
type Weigher struct {
	profile *model.HostProfile
	// deriveFamily optionally resolves a record's declared host to recover
	// a family when the record carries none.
	deriveFamily func(host string) string
}

// NewWeigher builds a Weigher for an already resolved profile. A nil profile
// disables host weighting.
func NewWeigher(profile *model.HostProfile) *Weigher {
	return &Weigher{profile: profile}
}

// ResolveProfile looks up the host name in the taxonomy store. Lookup
// failures degrade to a nil profile with a warning; only infrastructure
// errors are returned.
func ResolveProfile(ctx context.Context, resolver hoststore.Resolver, host string) (*model.HostProfile, error) {
	host = strings.TrimSpace(host)
	if host == "" || resolver == nil {
		return nil, nil
	}

	lineage, err := resolver.Resolve(ctx, host)
	if errors.Is(err, hoststore.ErrNotFound) {
		zap.L().Warn("hostctx: host not found in taxonomy store, proceeding without host weighting",
			zap.String("host", host),
		)
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "hostctx: resolve %q", host)
	}

	zap.L().Info("hostctx: host resolved",
		zap.String("host", host),
		zap.String("order", lineage.Order),
		zap.String("family", lineage.Family),
		zap.String("genus", lineage.Genus),
	)

	return &model.HostProfile{
		InputName: host,
		Order:     lineage.Order,
		Family:    lineage.Family,
		Genus:     lineage.Genus,
		Species:   host,
	}, nil
}

// WithFamilyDerivation enables the secondary lookup used when a record lacks
// host_family: the record's declared host is resolved through the taxonomy
// store and its family used for the Family tier comparison.
func (w *Weigher) WithFamilyDerivation(ctx context.Context, resolver hoststore.Resolver) *Weigher {
	if resolver == nil {
		return w
	}
	cache := make(map[string]string)
	w.deriveFamily = func(host string) string {
		if fam, ok := cache[host]; ok {
			return fam
		}
		fam := ""
		if l, err := resolver.Resolve(ctx, host); err == nil {
			fam = l.Family
		}
		cache[host] = fam
		return fam
	}
	return w
}

// Weigh computes the host-match level and weight for one record, comparing
// in strict priority order: species, genus, family, order, mismatch. Records
// with the General sentinel, or any record under a nil profile, weigh 1.0.
func (w *Weigher) Weigh(rec *model.ReferenceRecord) (model.HostMatchLevel, float64) {
	if w.profile == nil || rec.IsGeneral() {
		return model.HostMatchGeneral, matchWeights[model.HostMatchGeneral]
	}

	recHost := normalize(rec.Host)
	userSpecies := normalize(w.profile.Species)
	userGenus := normalize(w.profile.Genus)
	userFamily := normalize(w.profile.Family)
	userOrder := normalize(w.profile.Order)

	if recHost == userSpecies || (recHost != "" && strings.Contains(userSpecies, recHost)) {
		return model.HostMatchSpecies, matchWeights[model.HostMatchSpecies]
	}

	if userGenus != "" && strings.Contains(recHost, userGenus) {
		return model.HostMatchGenus, matchWeights[model.HostMatchGenus]
	}

	recFamily := normalize(rec.HostFamily)
	if !known(recFamily) && w.deriveFamily != nil {
		recFamily = normalize(w.deriveFamily(rec.Host))
	}
	if known(recFamily) && userFamily != "" && recFamily == userFamily {
		return model.HostMatchFamily, matchWeights[model.HostMatchFamily]
	}

	recOrder := normalize(rec.HostOrder)
	if known(recOrder) && userOrder != "" && recOrder == userOrder {
		return model.HostMatchOrder, matchWeights[model.HostMatchOrder]
	}

	return model.HostMatchMismatch, matchWeights[model.HostMatchMismatch]
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// known reports whether a host rank field carries a real value rather than
// a placeholder.
func known(s string) bool {
	switch s {
	case "", "*", "n/a", "na", "none", "unknown":
		return false
	}
	return true
}
