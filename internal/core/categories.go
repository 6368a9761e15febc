package core

// Category names form a closed set resolved at compile time; free-form
// strings from clients are rejected instead of silently accepted.
const (
	CategoryHouse         = "Casa"
	CategoryCar           = "Carro"
	CategoryGroceries     = "Mercado"
	CategoryFood          = "Alimentação"
	CategoryHealth        = "Saúde"
	CategoryTransport     = "Transporte"
	CategoryLeisure       = "Lazer"
	CategorySubscriptions = "Assinaturas"
	CategoryPartner       = "Parceiro"
	CategoryWork          = "Trabalho"
	CategoryOther         = "Outros"
)

// RentSubcategory is the marker used by the rent-pending check: any house
// expense whose subcategory contains it counts toward the month's rent.
const RentSubcategory = "Aluguel"

// subcategories maps each category to its fixed subcategory labels.
var subcategories = map[string][]string{
	CategoryHouse:         {"Aluguel", "Condomínio", "Luz", "Água", "Internet", "Gás", "Manutenção"},
	CategoryCar:           {"Combustível", "IPVA", "Seguro", "Manutenção", "Estacionamento"},
	CategoryGroceries:     {"Supermercado", "Feira", "Padaria"},
	CategoryFood:          {"Restaurante", "Delivery", "Lanche"},
	CategoryHealth:        {"Plano de saúde", "Farmácia", "Consulta", "Academia"},
	CategoryTransport:     {"Ônibus", "Metrô", "Aplicativo"},
	CategoryLeisure:       {"Viagem", "Cinema", "Shows", "Jogos"},
	CategorySubscriptions: {"Streaming", "Música", "Software"},
	CategoryPartner:       {"Presente", "Compartilhado"},
	CategoryWork:          {"Salário", "Bônus", "Freelance", "Benefício"},
	CategoryOther:         {"Transferência", "Ajuste", "Diversos"},
}

// Categories returns the category names in a stable order.
func Categories() []string {
	return []string{
		CategoryHouse, CategoryCar, CategoryGroceries, CategoryFood,
		CategoryHealth, CategoryTransport, CategoryLeisure,
		CategorySubscriptions, CategoryPartner, CategoryWork, CategoryOther,
	}
}

// SubcategoriesOf returns the subcategory labels for a category, or nil
// for an unknown category.
func SubcategoriesOf(category string) []string {
	subs, ok := subcategories[category]
	if !ok {
		return nil
	}
	out := make([]string, len(subs))
	copy(out, subs)
	return out
}

// IsValidCategory reports whether name is part of the closed category set.
func IsValidCategory(name string) bool {
	_, ok := subcategories[name]
	return ok
}

// IsValidSubcategory reports whether sub belongs to category. The empty
// subcategory is always accepted.
func IsValidSubcategory(category, sub string) bool {
	if sub == "" {
		return true
	}
	for _, s := range subcategories[category] {
		if s == sub {
			return true
		}
	}
	return false
}

// CategoryAmount is an amount aggregated under one category name.
type CategoryAmount struct {
	Name   string
	Amount Money
}
