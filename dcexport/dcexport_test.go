package dcexport

import "testing"

func TestOrderTablesPlacesDependenciesFirst(t *testing.T) {
	tables := []Table{
		{Name: "orders"},
		{Name: "customers"},
	}
	relations := []Relation{
		{FromTable: "orders", FromColumn: "customer_id", ToTable: "customers", ToColumn: "id"},
	}
	ordered, err := orderTables(tables, relations)
	if err != nil {
		t.Fatalf("orderTables: %v", err)
	}
	if len(ordered) != 2 || ordered[0].Name != "customers" || ordered[1].Name != "orders" {
		t.Fatalf("expected [customers orders], got %v", names(ordered))
	}
}

func TestOrderTablesDetectsCycle(t *testing.T) {
	tables := []Table{{Name: "a"}, {Name: "b"}}
	relations := []Relation{
		{FromTable: "a", FromColumn: "b_id", ToTable: "b", ToColumn: "id"},
		{FromTable: "b", FromColumn: "a_id", ToTable: "a", ToColumn: "id"},
	}
	_, err := orderTables(tables, relations)
	if err != CycleErr {
		t.Fatalf("expected CycleErr, got %v", err)
	}
}

func names(tables []Table) []string {
	out := make([]string, len(tables))
	for i, t := range tables {
		out[i] = t.Name
	}
	return out
}
