package consts

const (
	VaultPromNamespace  = "partnr_vault"
	OraclePromNamespace = "partnr_oracle"
)
