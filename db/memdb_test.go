package db

import "testing"

func TestMemDatabaseSuppression(t *testing.T) {
	database := InitMemDatabase()
	suppressed, err := database.IsSuppressedEmail("jane@example.com")
	if err != nil {
		t.Fatal(err)
	}
	if suppressed {
		t.Errorf("fresh store should not suppress anyone")
	}
	if err := database.PutSuppressedEmail("jane@example.com", "email.bounced", "2026-08-01T00:00:00Z"); err != nil {
		t.Fatal(err)
	}
	suppressed, err = database.IsSuppressedEmail("jane@example.com")
	if err != nil {
		t.Fatal(err)
	}
	if !suppressed {
		t.Errorf("recorded address should be suppressed")
	}
	if err := database.ClearTables(); err != nil {
		t.Fatal(err)
	}
	if suppressed, _ = database.IsSuppressedEmail("jane@example.com"); suppressed {
		t.Errorf("ClearTables should empty the store")
	}
}
