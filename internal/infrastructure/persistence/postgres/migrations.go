// internal/infrastructure/persistence/postgres/migrations.go
package postgres

func builtinMigrations() []Migration {
	return []Migration{
		{
			ID:          1,
			Name:        "create_signals",
			Description: "Журнал открытых виртуальных позиций",
			SQL: `
CREATE TABLE IF NOT EXISTS signals (
	id UUID PRIMARY KEY,
	symbol VARCHAR(32) NOT NULL,
	direction VARCHAR(8) NOT NULL,
	entry DOUBLE PRECISION NOT NULL,
	take_profit DOUBLE PRECISION NOT NULL,
	stop_loss DOUBLE PRECISION NOT NULL,
	risk_reward DOUBLE PRECISION NOT NULL,
	score SMALLINT NOT NULL,
	bar_time TIMESTAMP WITH TIME ZONE NOT NULL,
	opened_at TIMESTAMP WITH TIME ZONE NOT NULL,
	status VARCHAR(16) NOT NULL DEFAULT 'OPEN',
	exit_price DOUBLE PRECISION,
	resolved_bar TIMESTAMP WITH TIME ZONE,
	resolved_at TIMESTAMP WITH TIME ZONE
);

CREATE INDEX IF NOT EXISTS idx_signals_symbol_opened ON signals(symbol, opened_at DESC);
`,
		},
		{
			ID:          2,
			Name:        "index_signals_status",
			Description: "Поиск незакрытых позиций",
			SQL: `
CREATE INDEX IF NOT EXISTS idx_signals_status ON signals(status) WHERE status = 'OPEN';
`,
		},
	}
}
