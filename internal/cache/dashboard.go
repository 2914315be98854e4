package cache

import (
	"context"
	"log"
	"time"

	"egwinch_back_end/internal/database"

	"github.com/redis/go-redis/v9"
)

const (
	DashboardStatsTTL = 10 * time.Minute

	yearRangeKey   = "dashboard:year-range"
	statsKeyPrefix = "dashboard:stats:"
)

// GetDashboardStats retourne les agrégats précalculés pour une plage de dates
func GetDashboardStats(ctx context.Context, rangeKey string) (string, bool) {
	data, err := database.Redis.Get(ctx, statsKeyPrefix+rangeKey).Result()
	if err == redis.Nil || err != nil {
		return "", false
	}
	return data, true
}

// SetDashboardStats met en cache les agrégats d'une plage de dates
func SetDashboardStats(ctx context.Context, rangeKey, data string) {
	if err := database.Redis.Set(ctx, statsKeyPrefix+rangeKey, data, DashboardStatsTTL).Err(); err != nil {
		log.Printf("⚠️ Erreur cache dashboard: %v", err)
	}
}

// GetYearRange / SetYearRange : bornes d'années couvertes par les commandes,
// utilisées par le sélecteur de plage du dashboard
func GetYearRange(ctx context.Context) (string, bool) {
	data, err := database.Redis.Get(ctx, yearRangeKey).Result()
	if err != nil {
		return "", false
	}
	return data, true
}

func SetYearRange(ctx context.Context, data string) {
	if err := database.Redis.Set(ctx, yearRangeKey, data, 0).Err(); err != nil {
		log.Printf("⚠️ Erreur cache year-range: %v", err)
	}
}

// DashboardInvalidator implémente le signal d'invalidation consommé par le
// tunnel de commande : chaque nouvelle commande rend les agrégats obsolètes.
type DashboardInvalidator struct{}

func NewDashboardInvalidator() *DashboardInvalidator {
	return &DashboardInvalidator{}
}

// InvalidateDashboard supprime la clé year-range et toutes les clés de stats
func (d *DashboardInvalidator) InvalidateDashboard(ctx context.Context) error {
	if err := database.Redis.Del(ctx, yearRangeKey).Err(); err != nil {
		return err
	}

	keys, err := database.Redis.Keys(ctx, statsKeyPrefix+"*").Result()
	if err != nil {
		return err
	}
	if len(keys) > 0 {
		if err := database.Redis.Del(ctx, keys...).Err(); err != nil {
			return err
		}
	}

	log.Printf("🧹 Cache dashboard invalidé (%d clés de stats)", len(keys))
	return nil
}
