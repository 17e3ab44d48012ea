package entity

// Models lists every table, in migration order.
func Models() []interface{} {
	return []interface{}{
		&User{},
		&Kudos{},
		&Badge{},
		&UserBadge{},
		&KPI{},
		&Notification{},
	}
}
