package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"

	"revenue-forecast-backend/internal/model"
)

// Store 业务记录存储
// 保存五个业务域的原始每日记录，预测流水线本身不读写该存储，
// 只消费服务层取出的内存数组。
type Store struct {
	db *sql.DB
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS revenue_days (
		persona TEXT NOT NULL,
		date TEXT NOT NULL,
		revenue REAL NOT NULL DEFAULT 0,
		refunds REAL NOT NULL DEFAULT 0,
		gross_margin REAL NOT NULL DEFAULT 0,
		PRIMARY KEY (persona, date)
	)`,
	`CREATE TABLE IF NOT EXISTS lead_days (
		persona TEXT NOT NULL,
		date TEXT NOT NULL,
		new_leads REAL NOT NULL DEFAULT 0,
		converted_leads REAL NOT NULL DEFAULT 0,
		PRIMARY KEY (persona, date)
	)`,
	`CREATE TABLE IF NOT EXISTS customer_days (
		persona TEXT NOT NULL,
		date TEXT NOT NULL,
		active_customers REAL NOT NULL DEFAULT 0,
		persona_mix TEXT NOT NULL DEFAULT '{}',
		category_mix TEXT NOT NULL DEFAULT '{}',
		PRIMARY KEY (persona, date)
	)`,
	`CREATE TABLE IF NOT EXISTS ops_days (
		persona TEXT NOT NULL,
		date TEXT NOT NULL,
		sla_met REAL NOT NULL DEFAULT 0,
		on_time REAL NOT NULL DEFAULT 0,
		freight_mix TEXT NOT NULL DEFAULT '{}',
		PRIMARY KEY (persona, date)
	)`,
	`CREATE TABLE IF NOT EXISTS engagement_days (
		persona TEXT NOT NULL,
		date TEXT NOT NULL,
		sessions REAL NOT NULL DEFAULT 0,
		email_opens REAL NOT NULL DEFAULT 0,
		quote_requests REAL NOT NULL DEFAULT 0,
		PRIMARY KEY (persona, date)
	)`,
}

// Open 打开并初始化存储
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s", path))
	if err != nil {
		return nil, fmt.Errorf("打开业务数据库失败: %v", err)
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("初始化表结构失败: %v", err)
		}
	}
	return &Store{db: db}, nil
}

// Close 关闭存储
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// SaveRecords 写入五个域的每日记录（同日重复写入覆盖）
func (s *Store) SaveRecords(persona string, raw model.RawRecords) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, r := range raw.Revenue {
		q := sq.Insert("revenue_days").Options("OR REPLACE").
			Columns("persona", "date", "revenue", "refunds", "gross_margin").
			Values(persona, r.Date, r.Revenue, r.Refunds, r.GrossMargin)
		if err := execInsert(tx, q); err != nil {
			return err
		}
	}
	for _, r := range raw.Leads {
		q := sq.Insert("lead_days").Options("OR REPLACE").
			Columns("persona", "date", "new_leads", "converted_leads").
			Values(persona, r.Date, r.NewLeads, r.ConvertedLeads)
		if err := execInsert(tx, q); err != nil {
			return err
		}
	}
	for _, r := range raw.Customers {
		personaMix, _ := json.Marshal(r.PersonaMix)
		categoryMix, _ := json.Marshal(r.CategoryMix)
		q := sq.Insert("customer_days").Options("OR REPLACE").
			Columns("persona", "date", "active_customers", "persona_mix", "category_mix").
			Values(persona, r.Date, r.ActiveCustomers, string(personaMix), string(categoryMix))
		if err := execInsert(tx, q); err != nil {
			return err
		}
	}
	for _, r := range raw.Ops {
		freightMix, _ := json.Marshal(r.FreightMix)
		q := sq.Insert("ops_days").Options("OR REPLACE").
			Columns("persona", "date", "sla_met", "on_time", "freight_mix").
			Values(persona, r.Date, r.SLAMet, r.OnTime, string(freightMix))
		if err := execInsert(tx, q); err != nil {
			return err
		}
	}
	for _, r := range raw.Engagement {
		q := sq.Insert("engagement_days").Options("OR REPLACE").
			Columns("persona", "date", "sessions", "email_opens", "quote_requests").
			Values(persona, r.Date, r.Sessions, r.EmailOpens, r.QuoteRequests)
		if err := execInsert(tx, q); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// LoadRecords 读取指定画像在日期区间内的全部记录
func (s *Store) LoadRecords(persona, since, until string) (model.RawRecords, error) {
	var raw model.RawRecords

	rows, err := queryRows(s.db, sq.Select("date", "revenue", "refunds", "gross_margin").
		From("revenue_days").Where(sq.Eq{"persona": persona}).
		Where(sq.GtOrEq{"date": since}).Where(sq.LtOrEq{"date": until}).OrderBy("date"))
	if err != nil {
		return raw, err
	}
	for rows.Next() {
		var r model.RevenueRecord
		if err := rows.Scan(&r.Date, &r.Revenue, &r.Refunds, &r.GrossMargin); err != nil {
			rows.Close()
			return raw, err
		}
		raw.Revenue = append(raw.Revenue, r)
	}
	rows.Close()

	rows, err = queryRows(s.db, sq.Select("date", "new_leads", "converted_leads").
		From("lead_days").Where(sq.Eq{"persona": persona}).
		Where(sq.GtOrEq{"date": since}).Where(sq.LtOrEq{"date": until}).OrderBy("date"))
	if err != nil {
		return raw, err
	}
	for rows.Next() {
		var r model.LeadRecord
		if err := rows.Scan(&r.Date, &r.NewLeads, &r.ConvertedLeads); err != nil {
			rows.Close()
			return raw, err
		}
		raw.Leads = append(raw.Leads, r)
	}
	rows.Close()

	rows, err = queryRows(s.db, sq.Select("date", "active_customers", "persona_mix", "category_mix").
		From("customer_days").Where(sq.Eq{"persona": persona}).
		Where(sq.GtOrEq{"date": since}).Where(sq.LtOrEq{"date": until}).OrderBy("date"))
	if err != nil {
		return raw, err
	}
	for rows.Next() {
		var r model.CustomerRecord
		var personaMix, categoryMix string
		if err := rows.Scan(&r.Date, &r.ActiveCustomers, &personaMix, &categoryMix); err != nil {
			rows.Close()
			return raw, err
		}
		json.Unmarshal([]byte(personaMix), &r.PersonaMix)
		json.Unmarshal([]byte(categoryMix), &r.CategoryMix)
		raw.Customers = append(raw.Customers, r)
	}
	rows.Close()

	rows, err = queryRows(s.db, sq.Select("date", "sla_met", "on_time", "freight_mix").
		From("ops_days").Where(sq.Eq{"persona": persona}).
		Where(sq.GtOrEq{"date": since}).Where(sq.LtOrEq{"date": until}).OrderBy("date"))
	if err != nil {
		return raw, err
	}
	for rows.Next() {
		var r model.OpsRecord
		var freightMix string
		if err := rows.Scan(&r.Date, &r.SLAMet, &r.OnTime, &freightMix); err != nil {
			rows.Close()
			return raw, err
		}
		json.Unmarshal([]byte(freightMix), &r.FreightMix)
		raw.Ops = append(raw.Ops, r)
	}
	rows.Close()

	rows, err = queryRows(s.db, sq.Select("date", "sessions", "email_opens", "quote_requests").
		From("engagement_days").Where(sq.Eq{"persona": persona}).
		Where(sq.GtOrEq{"date": since}).Where(sq.LtOrEq{"date": until}).OrderBy("date"))
	if err != nil {
		return raw, err
	}
	for rows.Next() {
		var r model.EngagementRecord
		if err := rows.Scan(&r.Date, &r.Sessions, &r.EmailOpens, &r.QuoteRequests); err != nil {
			rows.Close()
			return raw, err
		}
		raw.Engagement = append(raw.Engagement, r)
	}
	rows.Close()

	return raw, nil
}

// CountDays 某画像的营收记录天数
func (s *Store) CountDays(persona string) (int, error) {
	query, args, err := sq.Select("COUNT(*)").From("revenue_days").Where(sq.Eq{"persona": persona}).ToSql()
	if err != nil {
		return 0, err
	}
	var count int
	if err := s.db.QueryRow(query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func execInsert(tx *sql.Tx, builder sq.InsertBuilder) error {
	query, args, err := builder.ToSql()
	if err != nil {
		return err
	}
	_, err = tx.Exec(query, args...)
	return err
}

func queryRows(db *sql.DB, builder sq.SelectBuilder) (*sql.Rows, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}
	return db.Query(query, args...)
}
