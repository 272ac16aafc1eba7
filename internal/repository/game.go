package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"go_arena/internal/bootstrap"
	"go_arena/internal/domain/game"
	errs "go_arena/internal/errors"
	"go_arena/internal/statuses"
)

const gamesCollection = "games"

// sgfTTL keeps SGF records of finished games around for a month.
const sgfTTL = 30 * 24 * time.Hour

type GameRepository struct {
	cfg   bootstrap.Config
	log   *zap.SugaredLogger
	redis *redis.Client
	mongo *mongo.Database
}

func NewGameRepository(cfg bootstrap.Config, log *zap.SugaredLogger, redis *redis.Client, mongo *mongo.Database) *GameRepository {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &GameRepository{
		cfg:   cfg,
		log:   log,
		redis: redis,
		mongo: mongo,
	}
}

func SgfKey(gameID string) string {
	return fmt.Sprintf("game:%s:sgf", gameID)
}

func (g *GameRepository) PutGame(ctx context.Context, gameData game.Game) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	collection := g.mongo.Collection(gamesCollection)

	_, err := collection.InsertOne(ctx, gameData)
	if err != nil {
		g.log.Errorf("failed to insert game to database: %v", err)
		return fmt.Errorf("%w: insert game: %w", errs.ErrInternal, err)
	}

	g.log.Infof("game inserted successfully with id: %s", gameData.ID)
	return nil
}

func (g *GameRepository) GetGameByID(ctx context.Context, gameID string) (game.Game, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	collection := g.mongo.Collection(gamesCollection)

	var result game.Game
	err := collection.FindOne(ctx, bson.M{"_id": gameID}).Decode(&result)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return game.Game{}, fmt.Errorf("%w: %s", errs.ErrGameNotFound, gameID)
	} else if err != nil {
		g.log.Error(err)
		return game.Game{}, fmt.Errorf("%w: find game: %w", errs.ErrInternal, err)
	}

	return result, nil
}

// ListGames returns one page of games, newest first. An empty status lists
// every game.
func (g *GameRepository) ListGames(ctx context.Context, status string, pageNum int) (*game.GameListResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	collection := g.mongo.Collection(gamesCollection)
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	limit := int64(g.cfg.PageLimitGames)
	if limit <= 0 {
		limit = 20
	}
	if pageNum < 1 {
		pageNum = 1
	}

	total, err := collection.CountDocuments(ctx, filter)
	if err != nil {
		g.log.Error(err)
		return nil, fmt.Errorf("%w: count games: %w", errs.ErrInternal, err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64(pageNum-1) * limit).
		SetLimit(limit).
		SetProjection(bson.M{"moves": 0})
	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		g.log.Error(err)
		return nil, fmt.Errorf("%w: list games: %w", errs.ErrInternal, err)
	}
	defer cursor.Close(ctx)

	games := make([]game.Game, 0, limit)
	if err = cursor.All(ctx, &games); err != nil {
		g.log.Error(err)
		return nil, fmt.Errorf("%w: decode games: %w", errs.ErrInternal, err)
	}

	return &game.GameListResponse{Games: games, Page: pageNum, Total: total}, nil
}

// CountByWinner counts finished games per winner ("black", "white", "draw").
func (g *GameRepository) CountByWinner(ctx context.Context) (map[string]int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	collection := g.mongo.Collection(gamesCollection)
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"status": statuses.StatusFinished}}},
		{{Key: "$group", Value: bson.M{"_id": "$winner", "count": bson.M{"$sum": 1}}}},
	}
	cursor, err := collection.Aggregate(ctx, pipeline)
	if err != nil {
		g.log.Error(err)
		return nil, fmt.Errorf("%w: aggregate games: %w", errs.ErrInternal, err)
	}
	defer cursor.Close(ctx)

	counts := make(map[string]int64)
	for cursor.Next(ctx) {
		var row struct {
			Winner string `bson:"_id"`
			Count  int64  `bson:"count"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, fmt.Errorf("%w: decode stats: %w", errs.ErrInternal, err)
		}
		counts[row.Winner] = row.Count
	}
	return counts, cursor.Err()
}

func (g *GameRepository) SaveSGFToRedis(ctx context.Context, gameID string, sgfText string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := g.redis.Set(ctx, SgfKey(gameID), sgfText, sgfTTL).Err(); err != nil {
		return fmt.Errorf("%w: save sgf: %w", errs.ErrInternal, err)
	}
	return nil
}

func (g *GameRepository) LoadSGFFromRedis(ctx context.Context, gameID string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	sgfText, err := g.redis.Get(ctx, SgfKey(gameID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", fmt.Errorf("%w: no sgf for %s", errs.ErrGameNotFound, gameID)
	} else if err != nil {
		return "", fmt.Errorf("%w: load sgf: %w", errs.ErrInternal, err)
	}
	return sgfText, nil
}
