package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"influence-api/internal/config"
	"influence-api/pkg/database"
	"influence-api/pkg/logger"
)

// schema creates every table the analytics queries read, plus the rollup
// views. Statements are idempotent so "up" can run repeatedly.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS viewpoint_groups (
		id            uuid PRIMARY KEY DEFAULT gen_random_uuid(),
		title         text,
		description   text,
		is_public     boolean DEFAULT true,
		is_searchable boolean DEFAULT true,
		created_at    timestamptz NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS profiles (
		id         uuid PRIMARY KEY DEFAULT gen_random_uuid(),
		person_id  uuid,
		created_at timestamptz NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS profile_viewpoint_group_rels (
		id                 uuid PRIMARY KEY DEFAULT gen_random_uuid(),
		profile_id         uuid NOT NULL REFERENCES profiles(id),
		viewpoint_group_id uuid NOT NULL REFERENCES viewpoint_groups(id),
		type               text NOT NULL,
		created_at         timestamptz NOT NULL DEFAULT now(),
		UNIQUE (profile_id, viewpoint_group_id, type)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_pvgr_group_type
		ON profile_viewpoint_group_rels (viewpoint_group_id, type)`,
	`CREATE INDEX IF NOT EXISTS idx_pvgr_profile_type
		ON profile_viewpoint_group_rels (profile_id, type)`,
	`CREATE TABLE IF NOT EXISTS persons (
		id        uuid PRIMARY KEY DEFAULT gen_random_uuid(),
		full_name text
	)`,
	`CREATE TABLE IF NOT EXISTS jurisdictions (
		id    uuid PRIMARY KEY DEFAULT gen_random_uuid(),
		name  text,
		level text,
		state text
	)`,
	`CREATE TABLE IF NOT EXISTS voter_verifications (
		id        uuid PRIMARY KEY DEFAULT gen_random_uuid(),
		person_id uuid NOT NULL REFERENCES persons(id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_voter_verifications_person
		ON voter_verifications (person_id)`,
	`CREATE TABLE IF NOT EXISTS voter_verification_jurisdiction_rels (
		id                    uuid PRIMARY KEY DEFAULT gen_random_uuid(),
		voter_verification_id uuid NOT NULL REFERENCES voter_verifications(id),
		jurisdiction_id       uuid NOT NULL REFERENCES jurisdictions(id),
		UNIQUE (voter_verification_id, jurisdiction_id)
	)`,
	`CREATE TABLE IF NOT EXISTS elections (
		id          uuid PRIMARY KEY DEFAULT gen_random_uuid(),
		name        text,
		poll_date   date NOT NULL,
		description text
	)`,
	`CREATE INDEX IF NOT EXISTS idx_elections_poll_date ON elections (poll_date)`,
	`CREATE TABLE IF NOT EXISTS ballot_items (
		id              uuid PRIMARY KEY DEFAULT gen_random_uuid(),
		election_id     uuid NOT NULL REFERENCES elections(id),
		jurisdiction_id uuid NOT NULL REFERENCES jurisdictions(id),
		title           text,
		description     text
	)`,
	`CREATE INDEX IF NOT EXISTS idx_ballot_items_election ON ballot_items (election_id)`,
	`CREATE TABLE IF NOT EXISTS offices (
		id       uuid PRIMARY KEY DEFAULT gen_random_uuid(),
		name     text,
		level    text,
		district text
	)`,
	`CREATE TABLE IF NOT EXISTS office_terms (
		id        uuid PRIMARY KEY DEFAULT gen_random_uuid(),
		office_id uuid REFERENCES offices(id)
	)`,
	`CREATE TABLE IF NOT EXISTS parties (
		id   uuid PRIMARY KEY DEFAULT gen_random_uuid(),
		name text
	)`,
	`CREATE TABLE IF NOT EXISTS influence_targets (
		id   uuid PRIMARY KEY DEFAULT gen_random_uuid(),
		name text
	)`,
	`CREATE TABLE IF NOT EXISTS influence_target_viewpoint_group_rels (
		id                  uuid PRIMARY KEY DEFAULT gen_random_uuid(),
		influence_target_id uuid NOT NULL REFERENCES influence_targets(id),
		viewpoint_group_id  uuid NOT NULL REFERENCES viewpoint_groups(id),
		weight              double precision NOT NULL DEFAULT 0,
		UNIQUE (influence_target_id, viewpoint_group_id)
	)`,
	`CREATE TABLE IF NOT EXISTS races (
		id                  uuid PRIMARY KEY DEFAULT gen_random_uuid(),
		ballot_item_id      uuid NOT NULL REFERENCES ballot_items(id),
		office_term_id      uuid REFERENCES office_terms(id),
		party_id            uuid REFERENCES parties(id),
		influence_target_id uuid REFERENCES influence_targets(id),
		is_partisan         boolean,
		is_primary          boolean
	)`,
	`CREATE INDEX IF NOT EXISTS idx_races_ballot_item ON races (ballot_item_id)`,
	`CREATE TABLE IF NOT EXISTS measures (
		id                  uuid PRIMARY KEY DEFAULT gen_random_uuid(),
		ballot_item_id      uuid NOT NULL REFERENCES ballot_items(id),
		name                text,
		title               text,
		summary             text,
		full_text           text,
		fiscal_impact       text,
		pro_snippet         text,
		con_snippet         text,
		influence_target_id uuid REFERENCES influence_targets(id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_measures_ballot_item ON measures (ballot_item_id)`,
	`CREATE TABLE IF NOT EXISTS candidacies (
		id           uuid PRIMARY KEY DEFAULT gen_random_uuid(),
		race_id      uuid NOT NULL REFERENCES races(id),
		candidate_id uuid NOT NULL REFERENCES persons(id),
		party_id     uuid REFERENCES parties(id),
		status       text,
		is_withdrawn boolean DEFAULT false,
		result       text
	)`,
	`CREATE INDEX IF NOT EXISTS idx_candidacies_race ON candidacies (race_id)`,
	`CREATE MATERIALIZED VIEW IF NOT EXISTS mv_supporters_by_jurisdiction AS
		SELECT rel.viewpoint_group_id,
		       vvj.jurisdiction_id,
		       rel.profile_id,
		       rel.created_at
		FROM profile_viewpoint_group_rels rel
		JOIN profiles pr ON pr.id = rel.profile_id AND pr.person_id IS NOT NULL
		JOIN voter_verifications vv ON vv.person_id = pr.person_id
		JOIN voter_verification_jurisdiction_rels vvj ON vvj.voter_verification_id = vv.id
		WHERE rel.type = 'supporter'`,
	`CREATE MATERIALIZED VIEW IF NOT EXISTS mv_time_series_supporters AS
		WITH periods AS (
			SELECT 'daily' AS period_type,
			       to_char(created_at, 'YYYY-MM-DD') AS period,
			       date_trunc('day', created_at)::date AS date,
			       viewpoint_group_id, profile_id, created_at
			FROM profile_viewpoint_group_rels WHERE type = 'supporter'
			UNION ALL
			SELECT 'weekly',
			       to_char(created_at, 'IYYY-"W"IW'),
			       (date_trunc('week', created_at) + interval '6 days')::date,
			       viewpoint_group_id, profile_id, created_at
			FROM profile_viewpoint_group_rels WHERE type = 'supporter'
			UNION ALL
			SELECT 'monthly',
			       to_char(created_at, 'YYYY-MM'),
			       (date_trunc('month', created_at) + interval '1 month - 1 day')::date,
			       viewpoint_group_id, profile_id, created_at
			FROM profile_viewpoint_group_rels WHERE type = 'supporter'
		)
		SELECT period_type, period, date, viewpoint_group_id,
		       count(*) AS new_supporters,
		       sum(count(*)) OVER (
		           PARTITION BY period_type, viewpoint_group_id ORDER BY date
		       )::int AS cumulative_supporters,
		       (SELECT count(*) FROM profile_viewpoint_group_rels r2
		            WHERE r2.type = 'supporter'
		              AND r2.viewpoint_group_id = p.viewpoint_group_id
		              AND r2.created_at::date BETWEEN p.date - 30 AND p.date
		       )::int AS active_supporters
		FROM periods p
		GROUP BY period_type, period, date, viewpoint_group_id`,
}

var drops = []string{
	`DROP MATERIALIZED VIEW IF EXISTS mv_time_series_supporters`,
	`DROP MATERIALIZED VIEW IF EXISTS mv_supporters_by_jurisdiction`,
	`DROP TABLE IF EXISTS candidacies`,
	`DROP TABLE IF EXISTS measures`,
	`DROP TABLE IF EXISTS races`,
	`DROP TABLE IF EXISTS influence_target_viewpoint_group_rels`,
	`DROP TABLE IF EXISTS influence_targets`,
	`DROP TABLE IF EXISTS parties`,
	`DROP TABLE IF EXISTS office_terms`,
	`DROP TABLE IF EXISTS offices`,
	`DROP TABLE IF EXISTS ballot_items`,
	`DROP TABLE IF EXISTS elections`,
	`DROP TABLE IF EXISTS voter_verification_jurisdiction_rels`,
	`DROP TABLE IF EXISTS voter_verifications`,
	`DROP TABLE IF EXISTS jurisdictions`,
	`DROP TABLE IF EXISTS persons`,
	`DROP TABLE IF EXISTS profile_viewpoint_group_rels`,
	`DROP TABLE IF EXISTS profiles`,
	`DROP TABLE IF EXISTS viewpoint_groups`,
}

// seed loads a small development fixture: one root group with a sub-group,
// a handful of verified supporters and an upcoming election.
var seed = []string{
	`INSERT INTO viewpoint_groups (id, title, created_at) VALUES
		('00000000-0000-0000-0000-000000000001', 'Root Coalition', now() - interval '120 days'),
		('00000000-0000-0000-0000-000000000002', 'Local Chapter', now() - interval '90 days')
	ON CONFLICT (id) DO NOTHING`,
	`INSERT INTO persons (id, full_name) VALUES
		('00000000-0000-0000-0000-000000000101', 'Alex Moore'),
		('00000000-0000-0000-0000-000000000102', 'Sam Osei'),
		('00000000-0000-0000-0000-000000000103', 'Riley Chen')
	ON CONFLICT (id) DO NOTHING`,
	`INSERT INTO profiles (id, person_id) VALUES
		('00000000-0000-0000-0000-000000000201', '00000000-0000-0000-0000-000000000101'),
		('00000000-0000-0000-0000-000000000202', '00000000-0000-0000-0000-000000000102'),
		('00000000-0000-0000-0000-000000000203', '00000000-0000-0000-0000-000000000103')
	ON CONFLICT (id) DO NOTHING`,
	`INSERT INTO profile_viewpoint_group_rels (profile_id, viewpoint_group_id, type, created_at) VALUES
		('00000000-0000-0000-0000-000000000201', '00000000-0000-0000-0000-000000000001', 'supporter', now() - interval '80 days'),
		('00000000-0000-0000-0000-000000000202', '00000000-0000-0000-0000-000000000001', 'supporter', now() - interval '40 days'),
		('00000000-0000-0000-0000-000000000203', '00000000-0000-0000-0000-000000000001', 'supporter', now() - interval '10 days'),
		('00000000-0000-0000-0000-000000000201', '00000000-0000-0000-0000-000000000002', 'leader',    now() - interval '70 days'),
		('00000000-0000-0000-0000-000000000203', '00000000-0000-0000-0000-000000000002', 'supporter', now() - interval '5 days')
	ON CONFLICT (profile_id, viewpoint_group_id, type) DO NOTHING`,
	`INSERT INTO jurisdictions (id, name, level, state) VALUES
		('00000000-0000-0000-0000-000000000301', 'Springfield', 'city', 'IL'),
		('00000000-0000-0000-0000-000000000302', 'Illinois', 'state', 'IL')
	ON CONFLICT (id) DO NOTHING`,
	`INSERT INTO voter_verifications (id, person_id) VALUES
		('00000000-0000-0000-0000-000000000401', '00000000-0000-0000-0000-000000000101'),
		('00000000-0000-0000-0000-000000000402', '00000000-0000-0000-0000-000000000102'),
		('00000000-0000-0000-0000-000000000403', '00000000-0000-0000-0000-000000000103')
	ON CONFLICT (id) DO NOTHING`,
	`INSERT INTO voter_verification_jurisdiction_rels (voter_verification_id, jurisdiction_id) VALUES
		('00000000-0000-0000-0000-000000000401', '00000000-0000-0000-0000-000000000301'),
		('00000000-0000-0000-0000-000000000401', '00000000-0000-0000-0000-000000000302'),
		('00000000-0000-0000-0000-000000000402', '00000000-0000-0000-0000-000000000301'),
		('00000000-0000-0000-0000-000000000403', '00000000-0000-0000-0000-000000000302')
	ON CONFLICT (voter_verification_id, jurisdiction_id) DO NOTHING`,
	`INSERT INTO elections (id, name, poll_date, description) VALUES
		('00000000-0000-0000-0000-000000000501', 'Municipal General', (now() + interval '45 days')::date, 'City offices and propositions')
	ON CONFLICT (id) DO NOTHING`,
	`INSERT INTO influence_targets (id, name) VALUES
		('00000000-0000-0000-0000-000000000601', 'City Council Seat 3')
	ON CONFLICT (id) DO NOTHING`,
	`INSERT INTO influence_target_viewpoint_group_rels (influence_target_id, viewpoint_group_id, weight) VALUES
		('00000000-0000-0000-0000-000000000601', '00000000-0000-0000-0000-000000000001', 0.8)
	ON CONFLICT (influence_target_id, viewpoint_group_id) DO NOTHING`,
	`INSERT INTO ballot_items (id, election_id, jurisdiction_id, title) VALUES
		('00000000-0000-0000-0000-000000000701', '00000000-0000-0000-0000-000000000501', '00000000-0000-0000-0000-000000000301', 'City Council Seat 3'),
		('00000000-0000-0000-0000-000000000702', '00000000-0000-0000-0000-000000000501', '00000000-0000-0000-0000-000000000301', 'Proposition A')
	ON CONFLICT (id) DO NOTHING`,
	`INSERT INTO races (id, ballot_item_id, influence_target_id, is_partisan, is_primary) VALUES
		('00000000-0000-0000-0000-000000000801', '00000000-0000-0000-0000-000000000701', '00000000-0000-0000-0000-000000000601', true, false)
	ON CONFLICT (id) DO NOTHING`,
	`INSERT INTO measures (id, ballot_item_id, title, summary) VALUES
		('00000000-0000-0000-0000-000000000901', '00000000-0000-0000-0000-000000000702', 'Proposition A', 'Parks bond issue')
	ON CONFLICT (id) DO NOTHING`,
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("usage: migrate <up|drop|seed|refresh>")
		os.Exit(1)
	}
	command := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	db, err := database.NewPostgresDB(ctx, cfg.DatabaseURL, "")
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	var statements []string
	switch command {
	case "up":
		statements = schema
	case "drop":
		statements = drops
	case "seed":
		statements = seed
	case "refresh":
		if err := db.RefreshRollups(ctx); err != nil {
			log.WithError(err).Fatal("Failed to refresh rollup views")
		}
		log.Info("Rollup views refreshed")
		return
	default:
		log.WithField("command", command).Fatal("Unknown command")
	}

	for i, stmt := range statements {
		if _, err := db.Pool.Exec(ctx, stmt); err != nil {
			log.WithError(err).WithField("statement", i).Fatal("Migration statement failed")
		}
	}
	log.WithFields(map[string]interface{}{
		"command":    command,
		"statements": len(statements),
	}).Info("Migration completed")
}
