package services

import "github.com/ad/go-contest-stats/internal/db"

// Each statistic reads the filtered submission set "s" through one of these.
var (
	qBasicCounts = db.Query{Name: "basic_counts", SQL: `
		SELECT COUNT(*), COUNT(DISTINCT user_id), AVG(score) FROM s`}

	qScores = db.Query{Name: "scores", SQL: `
		SELECT score FROM s ORDER BY score`}

	qRankTop = db.Query{Name: "rank_top", SQL: `
		SELECT user_id, AVG(score) AS avg_score, COUNT(*) AS attempts
		FROM s GROUP BY user_id
		ORDER BY avg_score DESC, attempts ASC, user_id ASC
		LIMIT 1`}

	qRankBottom = db.Query{Name: "rank_bottom", SQL: `
		SELECT user_id, AVG(score) AS avg_score, COUNT(*) AS attempts
		FROM s GROUP BY user_id
		ORDER BY avg_score ASC, attempts ASC, user_id ASC
		LIMIT 1`}

	qTimedScores = db.Query{Name: "timed_scores", SQL: `
		SELECT created_at, score FROM s ORDER BY created_at, id`}

	qPerformance = db.Query{Name: "performance", SQL: `
		SELECT AVG(max_time_ms), MIN(max_time_ms), AVG(max_memory_bytes), MIN(max_memory_bytes)
		FROM s`}

	qScoreSpread = db.Query{Name: "score_spread", SQL: `
		SELECT user_id, MAX(score) - MIN(score) AS spread
		FROM s GROUP BY user_id
		HAVING COUNT(*) > 1
		ORDER BY spread DESC, user_id ASC`}

	qEfficient = db.Query{Name: "efficient", SQL: `
		SELECT COUNT(*) FROM s
		WHERE score > 80
		  AND max_time_ms < (SELECT AVG(max_time_ms) FROM s)
		  AND max_memory_bytes < (SELECT AVG(max_memory_bytes) FROM s)`}

	qClusters = db.Query{Name: "clusters", SQL: `
		SELECT CASE
		         WHEN score < 20 THEN 0
		         WHEN score < 40 THEN 1
		         WHEN score < 60 THEN 2
		         WHEN score < 80 THEN 3
		         ELSE 4
		       END AS bin,
		       COUNT(*)
		FROM s GROUP BY bin`}

	qAttemptsPerUser = db.Query{Name: "attempts_per_user", SQL: `
		SELECT COUNT(*) FROM s GROUP BY user_id`}

	qFewestToPerfect = db.Query{Name: "fewest_to_perfect", SQL: `
		SELECT COUNT(*) AS attempts FROM s
		GROUP BY user_id
		HAVING MAX(score) >= 100
		ORDER BY attempts ASC
		LIMIT 1`}

	qUserSeries = db.Query{Name: "user_series", SQL: `
		SELECT user_id, created_at, score FROM s ORDER BY user_id, created_at, id`}

	qUserResourceMeans = db.Query{Name: "user_resource_means", SQL: `
		SELECT AVG(max_time_ms), AVG(max_memory_bytes)
		FROM s GROUP BY user_id
		HAVING COUNT(*) > 1`}

	qCompileErrors = db.Query{Name: "compile_errors", SQL: `
		SELECT COUNT(*), COALESCE(SUM(CASE WHEN compile_error THEN 1 ELSE 0 END), 0)
		FROM s GROUP BY user_id`}

	qCreatedAt = db.Query{Name: "created_at", SQL: `
		SELECT created_at FROM s ORDER BY created_at, id`}

	qTimeRange = db.Query{Name: "time_range", SQL: `
		SELECT MIN(created_at), MAX(created_at) FROM s`}

	qMeanScore = db.Query{Name: "mean_score", SQL: `
		SELECT AVG(score) FROM s`}

	qPerfectCounts = db.Query{Name: "perfect_counts", SQL: `
		SELECT COUNT(*) FROM s WHERE score >= 100 GROUP BY user_id`}

	qResourceMeans = db.Query{Name: "resource_means", SQL: `
		SELECT AVG(score), AVG(max_time_ms), AVG(max_memory_bytes) FROM s`}

	qFirstAttempts = db.Query{Name: "first_attempts", SQL: `
		SELECT AVG(score), COUNT(*) FROM s
		WHERE id IN (SELECT MIN(id) FROM s GROUP BY user_id)`}

	qQuickHighScorers = db.Query{Name: "quick_high_scorers", SQL: `
		SELECT DISTINCT user_id FROM (
			SELECT user_id, score,
			       ROW_NUMBER() OVER (PARTITION BY user_id ORDER BY created_at, id) AS rn
			FROM s
		)
		WHERE rn <= 2 AND score > 90
		ORDER BY user_id`}

	qResourceEfficient = db.Query{Name: "resource_efficient", SQL: `
		SELECT user_id FROM s
		WHERE max_time_ms < (SELECT AVG(max_time_ms) FROM s)
		  AND max_memory_bytes < (SELECT AVG(max_memory_bytes) FROM s)
		ORDER BY id`}

	qHotspots = db.Query{Name: "hotspots", SQL: `
		SELECT CAST(strftime('%H', created_at) AS INTEGER) AS hour, COUNT(*) AS cnt
		FROM s GROUP BY hour
		ORDER BY cnt DESC, hour ASC
		LIMIT ?`}

	qProblemDiversity = db.Query{Name: "problem_diversity", SQL: `
		SELECT user_id, COUNT(DISTINCT problem_id) AS problems
		FROM s GROUP BY user_id
		ORDER BY problems DESC, user_id ASC
		LIMIT ?`}

	qHighAchievers = db.Query{Name: "high_achievers", SQL: `
		SELECT user_id, AVG(score) AS avg_score
		FROM s GROUP BY user_id
		HAVING AVG(score) > ?
		ORDER BY avg_score DESC, user_id ASC`}

	qEngagementSpans = db.Query{Name: "engagement_spans", SQL: `
		SELECT user_id,
		       (CAST(strftime('%s', MAX(created_at)) AS INTEGER) -
		        CAST(strftime('%s', MIN(created_at)) AS INTEGER)) / 60.0 AS minutes
		FROM s GROUP BY user_id
		ORDER BY minutes DESC, user_id ASC
		LIMIT ?`}
)
