package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/vidfetch/vidfetch/config"
	"github.com/vidfetch/vidfetch/database"
	"github.com/vidfetch/vidfetch/extractor"
	"github.com/vidfetch/vidfetch/logger"
	"github.com/vidfetch/vidfetch/web"
	"github.com/vidfetch/vidfetch/web/job"
	"github.com/vidfetch/vidfetch/web/service"

	"github.com/spf13/cobra"
)

func initLogger() {
	level, err := logger.ParseLevel(config.GetLogLevel())
	if err != nil {
		log.Fatal(err)
	}
	logger.InitLogger(level)
}

func newServer() *web.Server {
	return web.NewServer(extractor.NewYtDlp(config.GetYtDlpPath()))
}

func runWebServer() {
	log.Printf("%v %v", config.GetName(), config.GetVersion())

	initLogger()
	defer logger.CloseLogger()

	err := database.InitDB(config.GetDatabaseConfig())
	if err != nil {
		log.Fatal(err)
	}
	defer database.CloseDB()

	if config.IsYtDlpInstall() {
		if err := extractor.Install(context.Background()); err != nil {
			logger.Warning("install yt-dlp failed:", err)
		}
	}

	server := newServer()
	err = server.Start()
	if err != nil {
		log.Println(err)
		return
	}

	sigCh := make(chan os.Signal, 1)
	// Trap shutdown signals
	signal.Notify(sigCh, syscall.SIGHUP, syscall.SIGTERM, os.Interrupt)
	for {
		sig := <-sigCh

		switch sig {
		case syscall.SIGHUP:
			logger.Info("Received SIGHUP signal. Restarting server...")
			err := server.Stop()
			if err != nil {
				logger.Warning("stop server err:", err)
			}
			server = newServer()
			err = server.Start()
			if err != nil {
				log.Println(err)
				return
			}
		default:
			logger.Info("Shutting down server...")
			if err := server.Stop(); err != nil {
				logger.Warning("stop server err:", err)
			}
			return
		}
	}
}

func initDB() bool {
	err := database.InitDB(config.GetDatabaseConfig())
	if err != nil {
		fmt.Println(err)
		return false
	}
	return true
}

func createUser(username, password string, admin bool) {
	if !initDB() {
		return
	}
	defer database.CloseDB()

	userService := service.UserService{}
	user, err := userService.CreateUser(username, password, admin)
	if err != nil {
		fmt.Println("create user failed:", err)
		return
	}
	fmt.Printf("user %s created, id %d\n", user.Username, user.Id)
}

func updatePassword(username, password string) {
	if !initDB() {
		return
	}
	defer database.CloseDB()

	userService := service.UserService{}
	if err := userService.UpdatePassword(username, password); err != nil {
		fmt.Println("set password failed:", err)
		return
	}
	fmt.Println("set password success")
}

func listUsers() {
	if !initDB() {
		return
	}
	defer database.CloseDB()

	userService := service.UserService{}
	users, err := userService.ListUsers()
	if err != nil {
		fmt.Println("list users failed:", err)
		return
	}
	for _, u := range users {
		role := "user"
		if u.IsAdmin {
			role = "admin"
		}
		fmt.Printf("%d\t%s\t%s\n", u.Id, u.Username, role)
	}
}

func cleanupScratch() {
	removed, err := job.NewScratchCleanupJob(config.GetScratchDir(), config.GetScratchTTL()).Sweep()
	if err != nil {
		fmt.Println("cleanup failed:", err)
		return
	}
	fmt.Printf("removed %d scratch directories\n", removed)
}

func main() {
	if err := config.LoadEnv(); err != nil {
		log.Println(err)
	}

	var rootCmd = &cobra.Command{
		Use: config.GetName(),
	}

	var runCmd = &cobra.Command{
		Use:   "run",
		Short: "Run the web server",
		Run: func(cmd *cobra.Command, args []string) {
			runWebServer()
		},
	}

	var versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(config.GetVersion())
		},
	}

	var userCmd = &cobra.Command{
		Use:   "user",
		Short: "Manage accounts",
	}

	var createCmd = &cobra.Command{
		Use:   "create",
		Short: "Create an account",
		Run: func(cmd *cobra.Command, args []string) {
			username, _ := cmd.Flags().GetString("username")
			password, _ := cmd.Flags().GetString("password")
			admin, _ := cmd.Flags().GetBool("admin")
			createUser(username, password, admin)
		},
	}

	createCmd.Flags().String("username", "", "set login username")
	createCmd.Flags().String("password", "", "set login password")
	createCmd.Flags().Bool("admin", false, "grant admin rights")
	_ = createCmd.MarkFlagRequired("username")
	_ = createCmd.MarkFlagRequired("password")

	var passwdCmd = &cobra.Command{
		Use:   "passwd",
		Short: "Change the password of an account",
		Run: func(cmd *cobra.Command, args []string) {
			username, _ := cmd.Flags().GetString("username")
			password, _ := cmd.Flags().GetString("password")
			updatePassword(username, password)
		},
	}

	passwdCmd.Flags().String("username", "", "account to update")
	passwdCmd.Flags().String("password", "", "new password")
	_ = passwdCmd.MarkFlagRequired("username")
	_ = passwdCmd.MarkFlagRequired("password")

	var listCmd = &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		Run: func(cmd *cobra.Command, args []string) {
			listUsers()
		},
	}

	userCmd.AddCommand(createCmd, passwdCmd, listCmd)

	var cleanupCmd = &cobra.Command{
		Use:   "cleanup",
		Short: "Remove expired download scratch directories",
		Run: func(cmd *cobra.Command, args []string) {
			cleanupScratch()
		},
	}

	rootCmd.AddCommand(runCmd, versionCmd, userCmd, cleanupCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
