package model

// AllModels lists every model migrated at startup.
func AllModels() []interface{} {
	return []interface{}{
		&UserModel{},
		&RefreshTokenModel{},
		&ProfileModel{},
		&RuleModel{},
		&BankConnectionModel{},
		&BrokerageConnectionModel{},
		&TransactionModel{},
		&EvaluationModel{},
		&OrderModel{},
		&NotificationQueueModel{},
	}
}
