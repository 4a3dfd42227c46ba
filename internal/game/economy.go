package game

import (
	"errors"
	"fmt"

	"github.com/papapumpkin/idlecore/internal/bignum"
	"github.com/papapumpkin/idlecore/internal/events"
)

// GeneratorCost returns the price of the next unit of id:
// BaseCost x CostGrowth^owned.
func (s *Session) GeneratorCost(id string) (bignum.Number, error) {
	def, ok := s.def.Generator(id)
	g := s.calc.Generator(id)
	if !ok || g == nil {
		return bignum.Zero(), fmt.Errorf("game: %w: %q", ErrUnknownGenerator, id)
	}
	if g.Count <= 0 {
		return def.BaseCost, nil
	}
	return def.BaseCost.Mul(bignum.New(def.CostGrowth).Pow(float64(g.Count))), nil
}

// BuyGenerator pays for and adds one unit of id.
func (s *Session) BuyGenerator(id string) error {
	cost, err := s.GeneratorCost(id)
	if err != nil {
		return err
	}
	if s.wallet.Less(cost) {
		return fmt.Errorf("game: buy %s: %w: need %s, have %s", id, ErrCannotAfford, cost, s.wallet)
	}
	s.wallet = s.wallet.Sub(cost)
	s.calc.Generator(id).Count++
	s.events.Emit(events.Event{Kind: events.KindGeneratorPurchased, Subject: id, Value: cost})
	return nil
}

// BuyMax buys as many units of id as the wallet allows, up to limit when
// limit > 0, and returns how many were bought.
func (s *Session) BuyMax(id string, limit int64) (int64, error) {
	var bought int64
	for limit <= 0 || bought < limit {
		if err := s.BuyGenerator(id); err != nil {
			if errors.Is(err, ErrCannotAfford) {
				return bought, nil
			}
			return bought, err
		}
		bought++
	}
	return bought, nil
}

// UnlockNode pays for and unlocks id, then applies its effect.
func (s *Session) UnlockNode(id string) error {
	n := s.tree.Node(id)
	if n == nil {
		return fmt.Errorf("game: %w: %q", ErrUnknownNode, id)
	}
	if n.Unlocked {
		return fmt.Errorf("game: unlock %s: %w", id, ErrAlreadyUnlocked)
	}
	if !s.tree.RequirementsMet(id) {
		return fmt.Errorf("game: unlock %s: %w: %v", id, ErrRequirementsUnmet, s.tree.Requirements(id))
	}
	if !s.tree.CanUnlock(id, s.wallet) {
		return fmt.Errorf("game: unlock %s: %w: need %s, have %s", id, ErrCannotAfford, n.Cost, s.wallet)
	}
	s.wallet = s.wallet.Sub(n.Cost)
	s.tree.Unlock(id)
	s.recompute()
	return nil
}

// PrestigePreview returns the points a prestige would grant now, or zero.
func (s *Session) PrestigePreview() bignum.Number {
	if s.layer == nil {
		return bignum.Zero()
	}
	return s.layer.CalculateReward(s.lifetime)
}

// Prestige trades this run's lifetime earnings for prestige points and
// starts a new run: the wallet, generator counts, unlocks and rule counters
// reset, while points, milestones and all-time earnings remain.
func (s *Session) Prestige() (bignum.Number, error) {
	if s.layer == nil {
		return bignum.Zero(), fmt.Errorf("game: %w", ErrNoPrestige)
	}
	if !s.layer.CanPrestige(s.lifetime) {
		return bignum.Zero(), fmt.Errorf("game: %w: need %s lifetime, have %s", ErrNotEligible, s.layer.Threshold(), s.lifetime)
	}
	reward := s.layer.Perform(s.lifetime)

	s.wallet = bignum.Zero()
	s.lifetime = bignum.Zero()
	for _, g := range s.def.Generators {
		if gen := s.calc.Generator(g.ID); gen != nil {
			gen.Count = g.StartCount
		}
	}
	s.tree.Reset()
	s.auto.Reset()
	s.recompute()
	return reward, nil
}
