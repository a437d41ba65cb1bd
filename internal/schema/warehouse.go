package schema

import "sort"

func key(name, typ string) Field {
	return Field{Name: name, Type: typ, Required: true, PrimaryKey: true}
}
func col(name, typ string) Field { return Field{Name: name, Type: typ} }
func text(names ...string) []Field {
	out := make([]Field, len(names))
	for i, n := range names {
		out[i] = col(n, TypeText)
	}
	return out
}

func audit() []Field {
	return []Field{col("created_at", TypeTimestamp), col("updated_at", TypeTimestamp)}
}

func fields(groups ...[]Field) []Field {
	var out []Field
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

// Warehouse returns the contracts of every persisted table: six dimensions
// and the transactions fact, ordered by name.
func Warehouse() []Contract {
	cs := []Contract{
		{
			Name: "dim_date",
			Fields: []Field{
				key("date_key", TypeText),
				col("date", TypeDate),
				col("year", TypeInt),
				col("quarter", TypeInt),
				col("month", TypeInt),
				col("month_name", TypeText),
				col("day", TypeInt),
				col("day_of_week", TypeInt),
				col("day_name", TypeText),
				col("week_of_year", TypeInt),
				col("is_weekend", TypeBool),
				col("fiscal_quarter", TypeInt),
			},
		},
		{
			Name: "dim_customers",
			Fields: fields(
				[]Field{key("customer_id", TypeInt)},
				text("name", "email", "telephone", "city", "country", "gender", "date_of_birth", "job_title"),
				audit(),
			),
		},
		{
			Name: "dim_discounts",
			Fields: fields(
				text("start", "end_date"),
				[]Field{col("discount", TypeFloat), col("description", TypeText), key("category", TypeText), col("sub_category", TypeText)},
				audit(),
			),
		},
		{
			Name: "dim_employees",
			Fields: fields(
				[]Field{key("employee_id", TypeInt), col("store_id", TypeInt)},
				text("name", "position"),
				audit(),
			),
		},
		{
			Name: "dim_products",
			Fields: fields(
				[]Field{key("product_id", TypeInt)},
				text("category", "sub_category",
					"description_pt", "description_de", "description_fr",
					"description_es", "description_en", "description_zh",
					"color", "size"),
				[]Field{col("production_cost", TypeFloat)},
				audit(),
			),
		},
		{
			Name: "dim_stores",
			Fields: fields(
				[]Field{key("store_id", TypeInt)},
				text("country", "city", "store_name"),
				[]Field{col("number_of_employees", TypeInt), col("zip_code", TypeText), col("latitude", TypeFloat), col("longitude", TypeFloat)},
				audit(),
			),
		},
		{
			Name: "fact_transactions",
			Fields: fields(
				[]Field{
					key("invoice_id", TypeText),
					key("line_item", TypeInt),
					col("customer_id", TypeInt),
					col("product_id", TypeInt),
					col("quantity", TypeInt),
					col("date", TypeTimestamp),
					col("discount", TypeFloat),
					col("line_total", TypeFloat),
					col("store_id", TypeInt),
					col("employee_id", TypeInt),
				},
				text("currency", "stock_keeping_unit", "transaction_type", "payment_method"),
				[]Field{col("unit_price", TypeFloat)},
				audit(),
				[]Field{
					col("date_key", TypeText),
					col("rate_to_usd", TypeFloat),
					col("unit_price_usd", TypeFloat),
					col("total_revenue_usd", TypeFloat),
					col("net_amount_usd", TypeFloat),
					col("discount_usd", TypeFloat),
				},
			),
		},
	}
	sort.Slice(cs, func(i, j int) bool { return cs[i].Name < cs[j].Name })
	return cs
}

// Lookup returns the declared contract for a warehouse table.
func Lookup(name string) (Contract, bool) {
	for _, c := range Warehouse() {
		if c.Name == name {
			return c, true
		}
	}
	return Contract{}, false
}
